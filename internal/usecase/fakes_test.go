package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"instamakaan/internal/data/entity"
	"instamakaan/internal/data/repository"
	"instamakaan/pkg/mailer"
)

// memAccounts is an in-memory AccountRepository keyed by email.
type memAccounts struct {
	mu       sync.Mutex
	byEmail  map[string]*entity.Account
	writes   int
	findErr  error
	createFn func(*entity.Account) error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: make(map[string]*entity.Account)}
}

func cloneAccount(a *entity.Account) *entity.Account {
	c := *a
	c.OTPCode = clonePtr(a.OTPCode)
	c.OTPExpiresAt = clonePtr(a.OTPExpiresAt)
	c.OTPLastSentAt = clonePtr(a.OTPLastSentAt)
	c.ResetToken = clonePtr(a.ResetToken)
	c.ResetTokenExpiresAt = clonePtr(a.ResetTokenExpiresAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// get returns a copy of the stored account for assertions.
func (m *memAccounts) get(email string) *entity.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[email]
	if !ok {
		return nil
	}
	return cloneAccount(a)
}

func (m *memAccounts) put(a *entity.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[a.Email] = cloneAccount(a)
}

func (m *memAccounts) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memAccounts) update(email string, fn func(a *entity.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[email]
	if !ok {
		return errors.New("account not found")
	}
	m.writes++
	fn(a)
	return nil
}

func (m *memAccounts) Create(ctx context.Context, account *entity.Account) error {
	if m.createFn != nil {
		if err := m.createFn(account); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[account.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.writes++
	m.byEmail[account.Email] = cloneAccount(account)
	return nil
}

func (m *memAccounts) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.get(email), nil
}

func (m *memAccounts) FindByResetToken(ctx context.Context, token string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byEmail {
		if a.ResetToken != nil && *a.ResetToken == token {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (m *memAccounts) SetOTP(ctx context.Context, email, code string, expiresAt, sentAt time.Time) error {
	return m.update(email, func(a *entity.Account) {
		a.OTPCode = &code
		a.OTPExpiresAt = &expiresAt
		a.OTPLastSentAt = &sentAt
		a.OTPRetryCount = 0
	})
}

func (m *memAccounts) ReleaseOTPThrottle(ctx context.Context, email string) error {
	return m.update(email, func(a *entity.Account) { a.OTPLastSentAt = nil })
}

func (m *memAccounts) IncrementOTPRetry(ctx context.Context, email string) error {
	return m.update(email, func(a *entity.Account) { a.OTPRetryCount++ })
}

func (m *memAccounts) MarkVerified(ctx context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[email]
	if !ok || a.OTPCode == nil || *a.OTPCode != code {
		return false, nil
	}
	m.writes++
	a.IsVerified = true
	a.OTPCode = nil
	a.OTPExpiresAt = nil
	a.OTPRetryCount = 0
	return true, nil
}

func (m *memAccounts) SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	return m.update(email, func(a *entity.Account) {
		a.ResetToken = &token
		a.ResetTokenExpiresAt = &expiresAt
	})
}

func (m *memAccounts) ConsumeResetToken(ctx context.Context, token, passwordHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byEmail {
		if a.ResetToken != nil && *a.ResetToken == token {
			m.writes++
			a.PasswordHash = passwordHash
			a.ResetToken = nil
			a.ResetTokenExpiresAt = nil
			return true, nil
		}
	}
	return false, nil
}

type sentMail struct {
	to  string
	msg mailer.Message
}

// captureMailer records every message and fails while err is set.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (c *captureMailer) Send(ctx context.Context, to string, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sentMail{to: to, msg: msg})
	return nil
}

func (c *captureMailer) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *captureMailer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *captureMailer) last() sentMail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[len(c.sent)-1]
}

type recordingAuditor struct {
	mu      sync.Mutex
	actions []entity.AuditAction
}

func (r *recordingAuditor) Record(account *entity.Account, action entity.AuditAction, meta map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingAuditor) recorded() []entity.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditAction(nil), r.actions...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
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
