package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUnreadUC struct {
	count int
}

func (s *stubUnreadUC) Bind(context.Context, uuid.UUID) error { return nil }
func (s *stubUnreadUC) Increment(context.Context)             {}
func (s *stubUnreadUC) Set(context.Context, int)              {}
func (s *stubUnreadUC) Value() int                            { return s.count }

type stubToastUC struct {
	current   *entity.NotificationItem
	dismissed int
	tapErr    error
}

func (s *stubToastUC) Show(context.Context, *entity.NotificationItem) {}

func (s *stubToastUC) Dismiss(context.Context) {
	s.dismissed++
	s.current = nil
}

func (s *stubToastUC) Current() *entity.NotificationItem { return s.current }

func (s *stubToastUC) Tap(ctx context.Context) error {
	if s.tapErr != nil {
		return s.tapErr
	}
	s.Dismiss(ctx)

	return nil
}

func (s *stubToastUC) Watch(int) (<-chan usecase.ToastEvent, func()) {
	ch := make(chan usecase.ToastEvent)

	return ch, func() { close(ch) }
}

func newInboxTestContext(t *testing.T, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func createTestInboxHandler(unread *stubUnreadUC, toast *stubToastUC) *InboxHandler {
	return &InboxHandler{
		unreadUC: unread,
		toastUC:  toast,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestInboxHandler_GetUnread(t *testing.T) {
	h := createTestInboxHandler(&stubUnreadUC{count: 3}, &stubToastUC{})
	c, rec := newInboxTestContext(t, http.MethodGet, "/v1/unread")

	require.NoError(t, h.GetUnread(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Data.Count)
}

func TestInboxHandler_GetToast_Empty(t *testing.T) {
	h := createTestInboxHandler(&stubUnreadUC{}, &stubToastUC{})
	c, rec := newInboxTestContext(t, http.MethodGet, "/v1/toast")

	require.NoError(t, h.GetToast(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data *entity.NotificationItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
}

func TestInboxHandler_DismissToast(t *testing.T) {
	toast := &stubToastUC{current: &entity.NotificationItem{ID: uuid.New()}}
	h := createTestInboxHandler(&stubUnreadUC{}, toast)
	c, rec := newInboxTestContext(t, http.MethodPost, "/v1/toast/dismiss")

	require.NoError(t, h.DismissToast(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, toast.dismissed)
}

func TestInboxHandler_TapToast_NotVisible(t *testing.T) {
	toast := &stubToastUC{tapErr: domainerrors.ErrToastNotVisible}
	h := createTestInboxHandler(&stubUnreadUC{}, toast)
	c, rec := newInboxTestContext(t, http.MethodPost, "/v1/toast/tap")

	require.NoError(t, h.TapToast(c))
	assert.Equal(t, domainerrors.ErrToastNotVisible.HTTPCode(), rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, domainerrors.ErrToastNotVisible.ErrorCode(), body.Error.Code)
}
