package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	domainerrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/verification"
)

func newVerificationServiceAt(t *testing.T, repo *MockUserRepository, sender *MockSender, now time.Time) *verificationService {
	t.Helper()
	svc := NewVerificationService(repo, sender, noCache).(*verificationService)
	svc.now = func() time.Time { return now }
	return svc
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestVerificationService_IssueAndSend(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("stores a fresh six digit code with ten minute expiry", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		user := &model.User{ID: 7, Email: "a@example.com"}

		repo.On("Update", mock.Anything, user).Return(nil)
		sender.On("Send", "a@example.com", "Email Verification", mock.AnythingOfType("string")).Return(nil)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		err := svc.IssueAndSend(context.Background(), user)

		assert.NoError(t, err)
		assert.NotNil(t, user.VerificationCode)
		assert.Len(t, *user.VerificationCode, 6)
		for _, r := range *user.VerificationCode {
			assert.True(t, r >= '0' && r <= '9')
		}
		assert.NotNil(t, user.VerificationCodeExpiresAt)
		assert.Equal(t, t0.Add(verification.CodeTTL), *user.VerificationCodeExpiresAt)

		repo.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("overwrites a previously pending code", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		user := &model.User{
			ID:                        7,
			Email:                     "a@example.com",
			VerificationCode:          strPtr("111111"),
			VerificationCodeExpiresAt: timePtr(t0.Add(-time.Minute)),
		}

		repo.On("Update", mock.Anything, user).Return(nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		err := svc.IssueAndSend(context.Background(), user)

		assert.NoError(t, err)
		assert.Equal(t, t0.Add(verification.CodeTTL), *user.VerificationCodeExpiresAt)
		repo.AssertNumberOfCalls(t, "Update", 1)
	})

	t.Run("failed delivery leaves the stored code in place", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		user := &model.User{ID: 7, Email: "a@example.com"}

		repo.On("Update", mock.Anything, user).Return(nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		err := svc.IssueAndSend(context.Background(), user)

		assert.ErrorIs(t, err, domainerrors.ErrEmailSendFailed)
		// store-then-notify: code persisted before the send was attempted
		assert.NotNil(t, user.VerificationCode)
		assert.NotNil(t, user.VerificationCodeExpiresAt)
		repo.AssertNumberOfCalls(t, "Update", 1)
	})
}

func TestVerificationService_RequestCode(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		_, err := svc.RequestCode(context.Background(), "ghost@example.com")

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})

	t.Run("already verified short-circuits without a new code", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		user := &model.User{ID: 1, Email: "a@example.com", IsEmailVerified: true}
		repo.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		alreadyVerified, err := svc.RequestCode(context.Background(), "a@example.com")

		assert.NoError(t, err)
		assert.True(t, alreadyVerified)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending user gets a reissued code", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		user := &model.User{
			ID:                        1,
			Email:                     "a@example.com",
			VerificationCode:          strPtr("222222"),
			VerificationCodeExpiresAt: timePtr(t0.Add(5 * time.Minute)),
		}
		repo.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)
		sender.On("Send", "a@example.com", mock.Anything, mock.Anything).Return(nil)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		alreadyVerified, err := svc.RequestCode(context.Background(), "a@example.com")

		assert.NoError(t, err)
		assert.False(t, alreadyVerified)
		assert.Equal(t, t0.Add(verification.CodeTTL), *user.VerificationCodeExpiresAt)
		sender.AssertNumberOfCalls(t, "Send", 1)
	})
}

func TestVerificationService_ConfirmCode(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	pendingUser := func() *model.User {
		return &model.User{
			ID:                        1,
			Email:                     "a@example.com",
			VerificationCode:          strPtr("123456"),
			VerificationCodeExpiresAt: timePtr(t0.Add(10 * time.Minute)),
		}
	}

	tests := []struct {
		name          string
		user          *model.User
		code          string
		now           time.Time
		expectUpdate  bool
		expectedError error
	}{
		{
			name:         "accepted before expiry",
			user:         pendingUser(),
			code:         "123456",
			now:          t0.Add(9 * time.Minute),
			expectUpdate: true,
		},
		{
			name:         "accepted exactly at expiry",
			user:         pendingUser(),
			code:         "123456",
			now:          t0.Add(10 * time.Minute),
			expectUpdate: true,
		},
		{
			name:          "matching but expired",
			user:          pendingUser(),
			code:          "123456",
			now:           t0.Add(11 * time.Minute),
			expectedError: domainerrors.ErrCodeExpired,
		},
		{
			name:          "mismatched code",
			user:          pendingUser(),
			code:          "654321",
			now:           t0,
			expectedError: domainerrors.ErrCodeInvalid,
		},
		{
			name:          "no pending code",
			user:          &model.User{ID: 1, Email: "a@example.com", IsEmailVerified: true},
			code:          "123456",
			now:           t0,
			expectedError: domainerrors.ErrCodeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			sender := new(MockSender)
			repo.On("FindByEmail", mock.Anything, tt.user.Email).Return(tt.user, nil)
			if tt.expectUpdate {
				repo.On("Update", mock.Anything, tt.user).Return(nil)
			}

			svc := newVerificationServiceAt(t, repo, sender, tt.now)
			err := svc.ConfirmCode(context.Background(), tt.user.Email, tt.code)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.user.IsEmailVerified)
				assert.Nil(t, tt.user.VerificationCode)
				assert.Nil(t, tt.user.VerificationCodeExpiresAt)
			}
			repo.AssertExpectations(t)
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		sender := new(MockSender)
		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		svc := newVerificationServiceAt(t, repo, sender, t0)
		err := svc.ConfirmCode(context.Background(), "ghost@example.com", "123456")

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

// A GetUser snapshot primed before verification must not survive a
// successful ConfirmCode: the write path invalidates the shared cache key.
func TestVerificationService_ConfirmCodeInvalidatesCachedUser(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{
		ID:                        7,
		Email:                     "a@example.com",
		VerificationCode:          strPtr("123456"),
		VerificationCodeExpiresAt: timePtr(t0.Add(10 * time.Minute)),
	}

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(7)).Return(user, nil)
	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	mem := newMemoryCache()
	users := NewUserService(repo, mem)
	svc := NewVerificationService(repo, new(MockSender), mem).(*verificationService)
	svc.now = func() time.Time { return t0 }

	before, err := users.GetUser(context.Background(), 7)
	assert.NoError(t, err)
	assert.False(t, before.IsEmailVerified)

	assert.NoError(t, svc.ConfirmCode(context.Background(), "a@example.com", "123456"))

	after, err := users.GetUser(context.Background(), 7)
	assert.NoError(t, err)
	assert.True(t, after.IsEmailVerified)
}

func TestVerificationService_IssueAndSendInvalidatesCachedUser(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	user := &model.User{ID: 7, Email: "a@example.com"}

	repo := new(MockUserRepository)
	repo.On("Update", mock.Anything, user).Return(nil)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mem := newMemoryCache()
	mem.entries[userCacheKey(7)] = []byte(`{"id":7}`)

	svc := NewVerificationService(repo, sender, mem).(*verificationService)
	svc.now = func() time.Time { return t0 }

	assert.NoError(t, svc.IssueAndSend(context.Background(), user))
	assert.NotContains(t, mem.entries, userCacheKey(7))
}

// The full lifecycle from spec: accept at t0+9m, reject the resubmission,
// and reject a separate issuance submitted past its window.
func TestVerificationService_Lifecycle(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := new(MockUserRepository)
	sender := new(MockSender)
	user := &model.User{
		ID:                        1,
		Email:                     "a@example.com",
		VerificationCode:          strPtr("314159"),
		VerificationCodeExpiresAt: timePtr(t0.Add(10 * time.Minute)),
	}
	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	svc := newVerificationServiceAt(t, repo, sender, t0.Add(9*time.Minute))
	assert.NoError(t, svc.ConfirmCode(context.Background(), "a@example.com", "314159"))
	assert.True(t, user.IsEmailVerified)

	// the code was consumed; resubmitting the same value is invalid, not a crash
	err := svc.ConfirmCode(context.Background(), "a@example.com", "314159")
	assert.ErrorIs(t, err, domainerrors.ErrCodeInvalid)

	// a separate issuance validated past its window is expired
	t1 := t0.Add(time.Hour)
	user.VerificationCode = strPtr("271828")
	user.VerificationCodeExpiresAt = timePtr(t1.Add(10 * time.Minute))
	svc.now = func() time.Time { return t1.Add(11 * time.Minute) }
	err = svc.ConfirmCode(context.Background(), "a@example.com", "271828")
	assert.ErrorIs(t, err, domainerrors.ErrCodeExpired)
}
