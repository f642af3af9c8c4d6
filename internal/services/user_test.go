package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(repo *fakeUserRepo, issuer *fakeTokenIssuer, mail domain.EmailService) domain.AuthService {
	return NewUserService(repo, &fakePasswordHasher{salt: "s"}, issuer, time.Hour, mail, discardLogger())
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		errIs    error
	}{
		{name: "success", username: "  alice ", email: " Alice@Example.com ", password: "password8"},
		{name: "short username", username: "al", email: "alice@example.com", password: "password8", errIs: domain.ErrInvalidInput},
		{name: "bad email", username: "alice", email: "not-an-email", password: "password8", errIs: domain.ErrInvalidInput},
		{name: "short password", username: "alice", email: "alice@example.com", password: "short", errIs: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			mail := &fakeEmailService{}
			svc := newTestUserService(repo, &fakeTokenIssuer{}, mail)

			token, user, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.Empty(t, repo.byID)
				assert.Empty(t, mail.sent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token-"+user.ID, token)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, "hash-s-password8", user.PasswordHash)
			assert.Equal(t, []string{}, user.SavedEvents)
			require.Len(t, mail.sent, 1)
			assert.Equal(t, "alice@example.com", mail.sent[0].Email)
		})
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeTokenIssuer{}, nil)

	_, _, err := svc.Register(ctx, "alice", "alice@example.com", "password8")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "alice", "other@example.com", "password8")
	require.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestUserService_Register_EmailFailureDoesNotFail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeTokenIssuer{}, &fakeEmailService{err: errors.New("ses throttled")})

	_, user, err := svc.Register(context.Background(), "alice", "alice@example.com", "password8")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUserService_Register_TokenFailure(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo, &fakeTokenIssuer{err: errors.New("no key")}, nil)

	_, _, err := svc.Register(context.Background(), "alice", "alice@example.com", "password8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sign token")
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	repo.add(&domain.User{ID: "u1", Username: "login", Email: "login@example.com", PasswordHash: "hash-s-secret123", Salt: "s"})
	svc := newTestUserService(repo, &fakeTokenIssuer{}, nil)

	token, user, err := svc.Login(ctx, " LOGIN@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "token-u1", token)
	assert.Equal(t, "u1", user.ID)

	_, _, err = svc.Login(ctx, "login@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	repo.getErr = errStore
	_, _, err = svc.Login(ctx, "login@example.com", "secret123")
	require.ErrorIs(t, err, errStore)
}

func TestUserService_Me(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	repo.add(&domain.User{ID: "u1", Username: "me", SavedEvents: []string{"ev-1"}})
	svc := newTestUserService(repo, &fakeTokenIssuer{}, nil)

	user, err := svc.Me(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-1"}, user.SavedEvents)

	_, err = svc.Me(ctx, "u2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
