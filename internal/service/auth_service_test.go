package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitime-app/unitime-api/internal/models"
	appErrors "github.com/unitime-app/unitime-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	byEmail map[string]string
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]*models.RefreshToken),
	}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		cp := *m.users[id]
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if user, ok := m.users[id]; ok {
		user.LastLogin = &ts
	}
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.tokens[token]; ok {
		cp := *stored
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, stored := range m.tokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "unitime-test",
	})
}

func TestAuthRegisterAndLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	session, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Student@Example.COM",
		Password: "secret123",
		Name:     "Nguyễn Văn A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "student@example.com", session.User.Email)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Email: "A@example.com", Password: "other456", Name: "B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	session, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)
	repo.users[session.User.ID].Active = false

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	session, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(session.AccessToken)
	require.Error(t, err)
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	session, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)
	assert.Len(t, repo.revoked, 1)

	// The old token was revoked and cannot be replayed.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthRefreshExpiredToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	session, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)

	repo.tokens[session.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthMe(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthService(repo)

	session, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "A",
	})
	require.NoError(t, err)

	info, err := svc.Me(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", info.Email)

	_, err = svc.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
