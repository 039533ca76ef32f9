package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/service/audit"
	"github.com/vetdesk/clinic-api/internal/session"
	pkgauth "github.com/vetdesk/clinic-api/pkg/auth"
)

type fakeUserRepo struct {
	byID map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, model.ErrInvalidCredentials
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

type resetToken struct {
	userID uuid.UUID
	expiry time.Time
	used   bool
}

type fakeTokenRepo struct {
	tokens map[string]*resetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*resetToken)}
}

func (r *fakeTokenRepo) StoreResetToken(_ context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	r.tokens[token] = &resetToken{userID: userID, expiry: expiry}
	return nil
}

func (r *fakeTokenRepo) ValidateResetToken(_ context.Context, token string) (uuid.UUID, error) {
	t, ok := r.tokens[token]
	if !ok || t.used || time.Now().After(t.expiry) {
		return uuid.Nil, assert.AnError
	}
	return t.userID, nil
}

func (r *fakeTokenRepo) InvalidateResetToken(_ context.Context, token string) error {
	if t, ok := r.tokens[token]; ok {
		t.used = true
	}
	return nil
}

type fakeEmail struct {
	resetTokens []string
}

func (e *fakeEmail) SendAccessCode(_ context.Context, _ string, _ string) error { return nil }

func (e *fakeEmail) SendPasswordReset(_ context.Context, _ string, token string) error {
	e.resetTokens = append(e.resetTokens, token)
	return nil
}

func (e *fakeEmail) SendCustom(_ context.Context, _ string, _ string, _ string) error { return nil }

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, _ string, _ uuid.UUID) ([]*model.AuditLog, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc      *Service
	users    *fakeUserRepo
	email    *fakeEmail
	sessions session.Store
	jwtSvc   pkgauth.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	emailSvc := &fakeEmail{}
	sessions := session.NewMemoryStore()
	jwtSvc := pkgauth.NewJWTService(pkgauth.JWTConfig{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})

	svc := NewService(users, jwtSvc, newFakeTokenRepo(), emailSvc, sessions, audit.NewService(&fakeAuditRepo{}))
	return &fixture{svc: svc, users: users, email: emailSvc, sessions: sessions, jwtSvc: jwtSvc}
}

func (f *fixture) register(t *testing.T, email, password string, role string) *model.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		Email:    email,
		Name:     "Test User",
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestLoginMintsSessionScopedToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "vet@clinic.test", "hunter2hunter2", "clinician")

	tokens, err := f.svc.Login(context.Background(), "vet@clinic.test", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims, err := f.jwtSvc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClinician, claims.Role)
	assert.NotEmpty(t, claims.SessionID)
}

func TestEachLoginStartsFreshSession(t *testing.T) {
	f := newFixture(t)
	f.register(t, "vet@clinic.test", "hunter2hunter2", "clinician")

	first, err := f.svc.Login(context.Background(), "vet@clinic.test", "hunter2hunter2")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "vet@clinic.test", "hunter2hunter2")
	require.NoError(t, err)

	firstClaims, err := f.jwtSvc.ValidateToken(first.AccessToken)
	require.NoError(t, err)
	secondClaims, err := f.jwtSvc.ValidateToken(second.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.SessionID, secondClaims.SessionID)
}

func TestWrongPasswordRejected(t *testing.T) {
	f := newFixture(t)
	f.register(t, "vet@clinic.test", "hunter2hunter2", "doctor")

	_, err := f.svc.Login(context.Background(), "vet@clinic.test", "not the password")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAccountLocksAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "vet@clinic.test", "hunter2hunter2", "doctor")

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := f.svc.Login(context.Background(), "vet@clinic.test", "not the password")
		require.Error(t, err)
	}

	stored, err := f.users.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusLocked, stored.Status)

	// Even the correct password fails while the lockout holds.
	_, err = f.svc.Login(context.Background(), "vet@clinic.test", "hunter2hunter2")
	assert.Error(t, err)
}

func TestLogoutEndsEditingSession(t *testing.T) {
	f := newFixture(t)
	f.register(t, "vet@clinic.test", "hunter2hunter2", "clinician")

	tokens, err := f.svc.Login(context.Background(), "vet@clinic.test", "hunter2hunter2")
	require.NoError(t, err)
	claims, err := f.jwtSvc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.sessions.SetUnlocked(context.Background(), claims.SessionID, true))
	require.NoError(t, f.svc.Logout(context.Background(), claims))

	state, err := f.sessions.Get(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.False(t, state.DiagnosisUnlocked)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "vet@clinic.test", "hunter2hunter2", "clinician")

	_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "vet@clinic.test",
		Name:     "Another User",
		Password: "hunter2hunter2",
		Role:     "front_desk",
	})
	assert.Error(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	f.register(t, "vet@clinic.test", "old-password-1", "clinician")

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "vet@clinic.test"))
	require.Len(t, f.email.resetTokens, 1)
	token := f.email.resetTokens[0]

	require.NoError(t, f.svc.ResetPassword(context.Background(), token, "new-password-1"))

	_, err := f.svc.Login(context.Background(), "vet@clinic.test", "old-password-1")
	assert.Error(t, err)
	_, err = f.svc.Login(context.Background(), "vet@clinic.test", "new-password-1")
	assert.NoError(t, err)

	// Reset tokens are single use.
	assert.Error(t, f.svc.ResetPassword(context.Background(), token, "another-password"))
}

func TestForgotPasswordHidesUnknownAddresses(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.svc.ForgotPassword(context.Background(), "nobody@clinic.test"))
	assert.Empty(t, f.email.resetTokens)
}
