package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	service      usecase.SessionUsecase
	registration *fakeRegistrationUC
	ingest       *fakeIngestUC
	unread       *fakeUnreadUC
	toasts       *fakeToastUC
}

func createTestSessionService(t *testing.T) *sessionFixture {
	t.Helper()

	fx := &sessionFixture{
		registration: &fakeRegistrationUC{started: make(chan struct{}, 2)},
		ingest:       &fakeIngestUC{},
		unread:       &fakeUnreadUC{},
		toasts:       &fakeToastUC{},
	}
	fx.service = NewSessionService(fx.registration, fx.ingest, fx.unread, fx.toasts, discardLogger())

	return fx
}

func (fx *sessionFixture) waitForRegistration(t *testing.T) {
	t.Helper()

	select {
	case <-fx.registration.started:
	case <-time.After(2 * time.Second):
		t.Fatal("registration was not kicked off")
	}
}

func TestSessionService_Start(t *testing.T) {
	fx := createTestSessionService(t)
	userID := uuid.New()

	require.NoError(t, fx.service.Start(context.Background(), userID))
	fx.waitForRegistration(t)

	assert.Equal(t, userID, fx.unread.bound)
	assert.Equal(t, []uuid.UUID{userID}, fx.ingest.started)

	active, ok := fx.service.Active()
	assert.True(t, ok)
	assert.Equal(t, userID, active)
}

func TestSessionService_Start_ReplacesActiveSession(t *testing.T) {
	fx := createTestSessionService(t)
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, fx.service.Start(context.Background(), first))
	fx.waitForRegistration(t)
	require.NoError(t, fx.service.Start(context.Background(), second))
	fx.waitForRegistration(t)

	// The first session was torn down before the second began.
	assert.Equal(t, 1, fx.ingest.stops)
	assert.Equal(t, []uuid.UUID{first, second}, fx.ingest.started)

	active, ok := fx.service.Active()
	assert.True(t, ok)
	assert.Equal(t, second, active)
}

func TestSessionService_Start_BindFailure(t *testing.T) {
	fx := createTestSessionService(t)
	fx.unread.bindErr = errors.New("disk gone")

	err := fx.service.Start(context.Background(), uuid.New())
	assert.Error(t, err)

	_, ok := fx.service.Active()
	assert.False(t, ok)
	assert.Empty(t, fx.ingest.started)
}

func TestSessionService_Start_IngestFailure(t *testing.T) {
	fx := createTestSessionService(t)
	fx.ingest.startErr = errors.New("broker down")

	err := fx.service.Start(context.Background(), uuid.New())
	assert.Error(t, err)

	_, ok := fx.service.Active()
	assert.False(t, ok)
}

func TestSessionService_End(t *testing.T) {
	fx := createTestSessionService(t)
	require.NoError(t, fx.service.Start(context.Background(), uuid.New()))
	fx.waitForRegistration(t)

	require.NoError(t, fx.service.End(context.Background()))

	assert.Equal(t, 1, fx.toasts.dismissed)
	assert.Equal(t, 1, fx.ingest.stops)

	_, ok := fx.service.Active()
	assert.False(t, ok)
}

func TestSessionService_End_NotActive(t *testing.T) {
	fx := createTestSessionService(t)

	err := fx.service.End(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotActive)
}
