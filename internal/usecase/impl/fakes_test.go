package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Registration = config.RegistrationConfig{
		MaxRetries:         3,
		BackoffBase:        5 * time.Minute,
		BackoffCapExponent: 5,
		LongResetDelay:     30 * time.Minute,
	}
	cfg.Registry.Platform = "ios"
	cfg.Toast = config.ToastConfig{
		TTL:           4 * time.Second,
		PreviewLength: 80,
	}

	return cfg
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeScheduler records scheduled tasks instead of arming timers; tests
// fire them explicitly.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks map[string]fakeTask
}

type fakeTask struct {
	delay time.Duration
	fn    func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(map[string]fakeTask)}
}

func (s *fakeScheduler) Schedule(id string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = fakeTask{delay: delay, fn: fn}
}

func (s *fakeScheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)

	return ok
}

func (s *fakeScheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]

	return ok
}

func (s *fakeScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]fakeTask)
}

// fire pops the pending task and runs its callback synchronously.
func (s *fakeScheduler) fire(id string) bool {
	s.mu.Lock()
	task, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()

	if ok {
		task.fn()
	}

	return ok
}

func (s *fakeScheduler) delayOf(id string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]

	return task.delay, ok
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	device  *entity.DeviceRecord
	getErr  error
	saveErr error
	saves   int
}

func (r *fakeDeviceRepo) GetDevice(_ context.Context) (*entity.DeviceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.device == nil {
		return nil, repository.ErrDeviceNotFound
	}

	return r.device, nil
}

func (r *fakeDeviceRepo) SaveDevice(_ context.Context, device *entity.DeviceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.device = device
	r.saves++

	return nil
}

type fakeUnreadRepo struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID]*entity.UnreadSnapshot
	getErr    error
	saveErr   error
}

func newFakeUnreadRepo() *fakeUnreadRepo {
	return &fakeUnreadRepo{snapshots: make(map[uuid.UUID]*entity.UnreadSnapshot)}
}

func (r *fakeUnreadRepo) GetSnapshot(_ context.Context, userID uuid.UUID) (*entity.UnreadSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	snapshot, ok := r.snapshots[userID]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}

	return snapshot, nil
}

func (r *fakeUnreadRepo) SaveSnapshot(_ context.Context, snapshot *entity.UnreadSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.snapshots[snapshot.UserID] = snapshot

	return nil
}

type registryCall struct {
	deviceID string
	platform string
	token    string
}

// fakeRegistry records registration upserts; block, when set, holds the
// call until released so tests can observe the in-flight state.
type fakeRegistry struct {
	mu      sync.Mutex
	calls   []registryCall
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (r *fakeRegistry) Register(_ context.Context, deviceID, platform, token string) error {
	r.mu.Lock()
	r.calls = append(r.calls, registryCall{deviceID: deviceID, platform: platform, token: token})
	block := r.block
	entered := r.entered
	err := r.err
	r.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	return err
}

func (r *fakeRegistry) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

type fakePermissions struct {
	mu        sync.Mutex
	status    service.PermissionStatus
	requested service.PermissionStatus
	statusErr error
	requests  int
}

func (p *fakePermissions) Status(_ context.Context) (service.PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status, p.statusErr
}

func (p *fakePermissions) Request(_ context.Context) (service.PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++

	return p.requested, nil
}

type fakeTokens struct {
	token string
	err   error
}

func (t *fakeTokens) CurrentToken(_ context.Context) (string, error) {
	return t.token, t.err
}

type fakeIdentity struct {
	id  string
	err error
}

func (i *fakeIdentity) GetOrCreateDeviceID(_ context.Context) (string, error) {
	return i.id, i.err
}

type fakeNav struct {
	mu     sync.Mutex
	opened []uuid.UUID
	err    error
}

func (n *fakeNav) OpenConversation(_ context.Context, conversationID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, conversationID)

	return n.err
}

type fakeSubscription struct {
	mu           sync.Mutex
	unsubscribed bool
	err          error
}

func (s *fakeSubscription) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = true

	return s.err
}

type fakeFeed struct {
	mu           sync.Mutex
	handler      service.FeedHandler
	sub          *fakeSubscription
	subscribeErr error
}

func (f *fakeFeed) Subscribe(_ context.Context, _ uuid.UUID, handler service.FeedHandler) (service.FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.handler = handler
	f.sub = &fakeSubscription{}

	return f.sub, nil
}

type fakeMemberships struct {
	mu          sync.Mutex
	memberships map[uuid.UUID]*entity.ConversationMembership
	err         error
	lookups     int
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{memberships: make(map[uuid.UUID]*entity.ConversationMembership)}
}

func (m *fakeMemberships) GetMembership(_ context.Context, conversationID uuid.UUID) (*entity.ConversationMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	membership, ok := m.memberships[conversationID]
	if !ok {
		return nil, errors.New("membership not found")
	}

	return membership, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.SenderProfile
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: make(map[uuid.UUID]*entity.SenderProfile)}
}

func (p *fakeProfiles) GetDisplayInfo(_ context.Context, userID uuid.UUID) (*entity.SenderProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, errors.New("profile not found")
	}

	return profile, nil
}

type fakeUnreadSource struct {
	mu    sync.Mutex
	count int
	err   error
}

func (s *fakeUnreadSource) FetchUnreadCount(_ context.Context, _ uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count, s.err
}

type fakeAppState struct {
	mu         sync.Mutex
	foreground bool
}

func (a *fakeAppState) Foreground() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.foreground
}

// Fake usecases for the session orchestrator tests.

type fakeRegistrationUC struct {
	mu        sync.Mutex
	initCalls int
	started   chan struct{}
}

func (r *fakeRegistrationUC) Initialize(_ context.Context, _ bool) (bool, error) {
	r.mu.Lock()
	r.initCalls++
	started := r.started
	r.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}

	return true, nil
}

func (r *fakeRegistrationUC) ForceReset(_ context.Context) error { return nil }

func (r *fakeRegistrationUC) Status(_ context.Context) (*usecase.RegistrationStatus, error) {
	return &usecase.RegistrationStatus{}, nil
}

type fakeIngestUC struct {
	mu       sync.Mutex
	started  []uuid.UUID
	stops    int
	startErr error
}

func (i *fakeIngestUC) Start(_ context.Context, userID uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.startErr != nil {
		return i.startErr
	}
	i.started = append(i.started, userID)

	return nil
}

func (i *fakeIngestUC) Stop(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stops++

	return nil
}

type fakeUnreadUC struct {
	mu      sync.Mutex
	bound   uuid.UUID
	bindErr error
	count   int
	incs    int
	sets    []int
}

func (u *fakeUnreadUC) Bind(_ context.Context, userID uuid.UUID) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.bindErr != nil {
		return u.bindErr
	}
	u.bound = userID

	return nil
}

func (u *fakeUnreadUC) Increment(_ context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.count++
	u.incs++
}

func (u *fakeUnreadUC) Set(_ context.Context, count int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.count = count
	u.sets = append(u.sets, count)
}

func (u *fakeUnreadUC) Value() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.count
}

type fakeToastUC struct {
	mu        sync.Mutex
	shown     []*entity.NotificationItem
	dismissed int
}

func (t *fakeToastUC) Show(_ context.Context, item *entity.NotificationItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shown = append(t.shown, item)
}

func (t *fakeToastUC) Dismiss(_ context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dismissed++
}

func (t *fakeToastUC) Current() *entity.NotificationItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.shown) == 0 {
		return nil
	}

	return t.shown[len(t.shown)-1]
}

func (t *fakeToastUC) Tap(_ context.Context) error { return nil }

func (t *fakeToastUC) Watch(_ int) (<-chan usecase.ToastEvent, func()) {
	ch := make(chan usecase.ToastEvent)

	return ch, func() { close(ch) }
}
