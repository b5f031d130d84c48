package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	service     *registrationService
	clock       *fakeClock
	sched       *fakeScheduler
	deviceRepo  *fakeDeviceRepo
	registry    *fakeRegistry
	permissions *fakePermissions
	tokens      *fakeTokens
}

func createTestRegistrationService(t *testing.T) *registrationFixture {
	t.Helper()

	fx := &registrationFixture{
		clock:       newFakeClock(),
		sched:       newFakeScheduler(),
		deviceRepo:  &fakeDeviceRepo{},
		registry:    &fakeRegistry{},
		permissions: &fakePermissions{status: service.PermissionGranted},
		tokens:      &fakeTokens{token: "apns-token-1"},
	}

	svc := NewRegistrationService(
		testConfig(),
		&fakeIdentity{id: "device-1"},
		fx.deviceRepo,
		fx.registry,
		fx.permissions,
		fx.tokens,
		fx.sched,
		discardLogger(),
	)
	fx.service = svc.(*registrationService)
	fx.service.now = fx.clock.Now

	return fx
}

func TestRegistrationService_Initialize_Success(t *testing.T) {
	fx := createTestRegistrationService(t)
	ctx := context.Background()

	ok, err := fx.service.Initialize(ctx, false)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, 1, fx.registry.callCount())
	assert.Equal(t, registryCall{deviceID: "device-1", platform: "ios", token: "apns-token-1"}, fx.registry.calls[0])

	status, err := fx.service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Attempts)
	assert.False(t, status.InCooldown)
	assert.False(t, status.ReachedLimit)
	assert.False(t, status.IsInitializing)
}

func TestRegistrationService_Initialize_FailureSchedulesBackoff(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")

	ok, err := fx.service.Initialize(context.Background(), false)
	assert.False(t, ok)
	assert.Error(t, err)

	status, _ := fx.service.Status(context.Background())
	assert.Equal(t, 1, status.Attempts)
	assert.True(t, status.InCooldown)

	// cooldown(1) = base * 2^1
	delay, pending := fx.sched.delayOf(taskRegistrationRetry)
	require.True(t, pending)
	assert.Equal(t, 10*time.Minute, delay)
	assert.Equal(t, delay.Milliseconds(), status.NextRetryInMS)
}

func TestRegistrationService_Initialize_CooldownRejects(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")

	_, _ = fx.service.Initialize(context.Background(), false)
	require.Equal(t, 1, fx.registry.callCount())

	// Still inside the cooldown window: no new attempt, no error.
	ok, err := fx.service.Initialize(context.Background(), false)
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 1, fx.registry.callCount())
}

func TestRegistrationService_Initialize_RetryAfterCooldownElapsed(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")

	_, _ = fx.service.Initialize(context.Background(), false)
	delay, pending := fx.sched.delayOf(taskRegistrationRetry)
	require.True(t, pending)

	// The timer fires once the window has elapsed.
	fx.registry.err = nil
	fx.clock.Advance(delay)
	require.True(t, fx.sched.fire(taskRegistrationRetry))

	assert.Equal(t, 2, fx.registry.callCount())
	status, _ := fx.service.Status(context.Background())
	assert.Equal(t, 0, status.Attempts)
	assert.False(t, status.InCooldown)
}

func TestRegistrationService_Initialize_ForceRetryBypassesCooldown(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")

	_, _ = fx.service.Initialize(context.Background(), false)
	require.Equal(t, 1, fx.registry.callCount())

	fx.registry.err = nil
	ok, err := fx.service.Initialize(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, fx.registry.callCount())
}

func TestRegistrationService_Initialize_ConcurrentCallsSingleAttempt(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.block = make(chan struct{})
	fx.registry.entered = make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ok, err := fx.service.Initialize(context.Background(), false)
		assert.True(t, ok)
		assert.NoError(t, err)
	}()

	// Wait until the first attempt holds the registry call.
	<-fx.registry.entered

	ok, err := fx.service.Initialize(context.Background(), false)
	assert.False(t, ok)
	assert.NoError(t, err)

	close(fx.registry.block)
	<-done

	assert.Equal(t, 1, fx.registry.callCount())
}

func TestRegistrationService_Initialize_LimitReachedAfterMaxRetries(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fx.service.Initialize(ctx, false)
		assert.Error(t, err)
		if delay, pending := fx.sched.delayOf(taskRegistrationRetry); pending {
			fx.clock.Advance(delay)
			fx.sched.Cancel(taskRegistrationRetry)
		}
	}

	require.Equal(t, 3, fx.registry.callCount())

	status, _ := fx.service.Status(ctx)
	assert.True(t, status.ReachedLimit)
	assert.Equal(t, 3, status.Attempts)

	// No automatic retry is armed; only the long reset is.
	assert.False(t, fx.sched.Pending(taskRegistrationRetry))
	delay, pending := fx.sched.delayOf(taskRegistrationReset)
	require.True(t, pending)
	assert.Equal(t, 30*time.Minute, delay)

	// A further call surfaces the spent budget without a new attempt.
	ok, err := fx.service.Initialize(ctx, false)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domainerrors.ErrRetryLimitExceeded)
	assert.Equal(t, 3, fx.registry.callCount())
}

func TestRegistrationService_LongResetRestoresBudget(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = fx.service.Initialize(ctx, false)
		if delay, pending := fx.sched.delayOf(taskRegistrationRetry); pending {
			fx.clock.Advance(delay)
			fx.sched.Cancel(taskRegistrationRetry)
		}
	}
	require.Equal(t, 3, fx.registry.callCount())

	// The reset timer restores the budget and re-runs registration,
	// which now succeeds.
	fx.registry.err = nil
	fx.clock.Advance(30 * time.Minute)
	require.True(t, fx.sched.fire(taskRegistrationReset))

	assert.Equal(t, 4, fx.registry.callCount())
	status, _ := fx.service.Status(ctx)
	assert.Equal(t, 0, status.Attempts)
	assert.False(t, status.ReachedLimit)
}

func TestRegistrationService_PermissionDenialFollowsBackoff(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.permissions.status = service.PermissionDenied
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fx.service.Initialize(ctx, false)
		assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)
		if delay, pending := fx.sched.delayOf(taskRegistrationRetry); pending {
			fx.clock.Advance(delay)
			fx.sched.Cancel(taskRegistrationRetry)
		}
	}

	// The registry is never reached and the retry budget is spent.
	assert.Equal(t, 0, fx.registry.callCount())
	status, _ := fx.service.Status(ctx)
	assert.True(t, status.ReachedLimit)
}

func TestRegistrationService_UndeterminedPermissionPrompts(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.permissions.status = service.PermissionUndetermined
	fx.permissions.requested = service.PermissionGranted

	ok, err := fx.service.Initialize(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, fx.permissions.requests)
	assert.Equal(t, 1, fx.registry.callCount())
}

func TestRegistrationService_ForceReset(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")
	ctx := context.Background()

	_, _ = fx.service.Initialize(ctx, false)
	require.True(t, fx.sched.Pending(taskRegistrationRetry))

	require.NoError(t, fx.service.ForceReset(ctx))

	assert.False(t, fx.sched.Pending(taskRegistrationRetry))
	assert.False(t, fx.sched.Pending(taskRegistrationReset))

	status, _ := fx.service.Status(ctx)
	assert.Equal(t, 0, status.Attempts)
	assert.False(t, status.InCooldown)
	assert.False(t, status.ReachedLimit)

	// The machine accepts a fresh attempt immediately.
	fx.registry.err = nil
	ok, err := fx.service.Initialize(ctx, false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistrationService_CooldownFormula(t *testing.T) {
	fx := createTestRegistrationService(t)

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: 5 * time.Minute},
		{attempts: 1, want: 10 * time.Minute},
		{attempts: 2, want: 20 * time.Minute},
		{attempts: 5, want: 160 * time.Minute},
		{attempts: 9, want: 160 * time.Minute}, // capped at 2^5
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fx.service.cooldown(tt.attempts), "attempts=%d", tt.attempts)
	}
}

func TestRegistrationService_StatusDoesNotMutate(t *testing.T) {
	fx := createTestRegistrationService(t)
	fx.registry.err = errors.New("connection refused")
	ctx := context.Background()

	_, _ = fx.service.Initialize(ctx, false)

	before, _ := fx.service.Status(ctx)
	after, _ := fx.service.Status(ctx)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, fx.registry.callCount())
}
