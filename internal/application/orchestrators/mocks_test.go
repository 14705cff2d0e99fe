package orchestrators

import (
	"context"
	"errors"
	"sync"
	"time"

	"academyhub/internal/adapters/api"
	"academyhub/internal/adapters/email"
	"academyhub/internal/domain/account"
	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/outbox"
	"academyhub/internal/domain/session"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

var errUpstream = &api.Error{Kind: api.KindHTTP, Status: 500, Message: "marketplace unavailable"}

// mockAuthAPI implements AuthAPI for testing.
type mockAuthAPI struct {
	loginResult api.LoginResult
	loginErr    error
	registerErr error
	me          account.User
	meErr       error

	logins    []api.Credentials
	registers []api.Registration
	meTokens  []string
}

func (m *mockAuthAPI) Login(_ context.Context, creds api.Credentials) (api.LoginResult, error) {
	m.logins = append(m.logins, creds)
	return m.loginResult, m.loginErr
}

func (m *mockAuthAPI) Register(_ context.Context, reg api.Registration) (api.LoginResult, error) {
	m.registers = append(m.registers, reg)
	if m.registerErr != nil {
		return api.LoginResult{}, m.registerErr
	}
	return m.loginResult, nil
}

func (m *mockAuthAPI) Me(ctx context.Context) (account.User, error) {
	m.meTokens = append(m.meTokens, api.TokenFrom(ctx))
	return m.me, m.meErr
}

// mockSessionStore implements the session store interfaces for testing.
type mockSessionStore struct {
	sessions  map[string]session.Session
	createErr error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]session.Session)}
}

func (m *mockSessionStore) Create(_ context.Context, s session.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	if err := s.Validate(); err != nil {
		return err
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// mockOutboxStore implements outboxStore.Store for testing.
type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	order   []string
	saveErr error
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		if e := m.entries[id]; e.Status == outbox.StatusFailed && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutboxStore) CountByStatus(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range m.entries {
		counts[e.Status]++
	}
	return counts, nil
}

// mockSender implements email.Sender for testing.
type mockSender struct {
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1", SentAt: fixedTime}, nil
}

// mockEnrollmentAPI implements EnrollmentAPI for testing.
type mockEnrollmentAPI struct {
	byUser     []enrollment.Request
	byUserErr  error
	byGroup    []enrollment.Request
	byGroupErr error
	createErr  error

	creates      []enrollment.Request
	byUserCalls  int
	byGroupCalls int
}

func (m *mockEnrollmentAPI) CreateEnrollmentRequest(_ context.Context, req enrollment.Request) (enrollment.Request, error) {
	m.creates = append(m.creates, req)
	if m.createErr != nil {
		return enrollment.Request{}, m.createErr
	}
	req.ID = "req-new"
	req.Status = enrollment.StatusPending
	m.byUser = append(m.byUser, req)
	m.byGroup = append(m.byGroup, req)
	return req, nil
}

func (m *mockEnrollmentAPI) ListEnrollmentRequestsByGroup(_ context.Context, _ string) ([]enrollment.Request, error) {
	m.byGroupCalls++
	return m.byGroup, m.byGroupErr
}

func (m *mockEnrollmentAPI) ListEnrollmentRequestsByUser(_ context.Context, _ string) ([]enrollment.Request, error) {
	m.byUserCalls++
	return m.byUser, m.byUserErr
}
