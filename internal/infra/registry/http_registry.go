// Package registry implements the push-token registry client.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"beacon/config"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// httpRegistry implements service.TokenRegistry against the backend's
// push-token endpoint. Each call carries a short-lived HMAC-signed device
// assertion so the backend can attribute the upsert without a user session.
type httpRegistry struct {
	endpoint        string
	assertionSecret string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewTokenRegistry is the constructor for httpRegistry.
func NewTokenRegistry(cfg *config.Config, logger *slog.Logger) service.TokenRegistry {
	return &httpRegistry{
		endpoint:        cfg.Registry.Endpoint,
		assertionSecret: cfg.Registry.AssertionSecret,
		httpClient: &http.Client{
			Timeout: cfg.Registry.Timeout,
		},
		logger: logger,
	}
}

type registerRequest struct {
	DeviceID string `json:"device_id"`
	Platform string `json:"platform"`
	Token    string `json:"token"`
}

// Register upserts the (device, token) pair on the backend registry.
func (r *httpRegistry) Register(ctx context.Context, deviceID, platform, token string) error {
	body, err := json.Marshal(registerRequest{
		DeviceID: deviceID,
		Platform: platform,
		Token:    token,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}

	assertion, err := r.deviceAssertion(deviceID)
	if err != nil {
		return errors.Wrap(err, "sign device assertion")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+assertion)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return domainerrors.ErrRegistrationFailed.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		r.logger.Warn("token registry rejected registration",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(payload)),
		)

		return domainerrors.ErrRegistrationFailed.WithDetails(resp.Status)
	}

	r.logger.Info("push token registered",
		slog.String("device_id", deviceID),
		slog.String("platform", platform),
	)

	return nil
}

// deviceAssertion creates a short-lived JWT identifying the device.
func (r *httpRegistry) deviceAssertion(deviceID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  deviceID,
		"iat":  now.Unix(),
		"exp":  now.Add(2 * time.Minute).Unix(),
		"type": "device",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(r.assertionSecret))
}
