package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"usermgmt/internal/cache"
	domainerrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
)

// The cache wrapper is nil-safe, so tests run without redis.
var noCache *cache.Client

func TestUserService_GetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "a@example.com"}, nil)

		svc := NewUserService(repo, noCache)
		user, err := svc.GetUser(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(repo, noCache)
		_, err := svc.GetUser(context.Background(), 99)

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("mutates name and phone only", func(t *testing.T) {
		expiry := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		code := "123456"
		user := &model.User{
			ID:                        1,
			FirstName:                 "Old",
			LastName:                  "Name",
			Email:                     "a@example.com",
			PhoneNumber:               "+15550100001",
			PasswordHash:              "$2a$10$hash",
			IsEmailVerified:           false,
			VerificationCode:          &code,
			VerificationCodeExpiresAt: &expiry,
		}

		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
		repo.On("Update", mock.Anything, user).Return(nil)

		svc := NewUserService(repo, noCache)
		err := svc.UpdateProfile(context.Background(), 1, "New", "Person", "+15550100009")

		assert.NoError(t, err)
		assert.Equal(t, "New", user.FirstName)
		assert.Equal(t, "Person", user.LastName)
		assert.Equal(t, "+15550100009", user.PhoneNumber)

		// identity and verification state are untouched
		assert.Equal(t, "a@example.com", user.Email)
		assert.Equal(t, "$2a$10$hash", user.PasswordHash)
		assert.False(t, user.IsEmailVerified)
		assert.Equal(t, "123456", *user.VerificationCode)
		assert.Equal(t, expiry, *user.VerificationCodeExpiresAt)

		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(repo, noCache)
		err := svc.UpdateProfile(context.Background(), 99, "A", "B", "+15550100001")

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("delete then fetch yields not found", func(t *testing.T) {
		user := &model.User{ID: 1, Email: "a@example.com"}
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(1)).Return(user, nil).Once()
		repo.On("Delete", mock.Anything, user).Return(nil)
		repo.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(repo, noCache)
		assert.NoError(t, svc.DeleteUser(context.Background(), 1))

		_, err := svc.GetUser(context.Background(), 1)
		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(repo, noCache)
		err := svc.DeleteUser(context.Background(), 99)

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("List", mock.Anything).Return([]model.User{{ID: 1}, {ID: 2}}, nil)

	svc := NewUserService(repo, noCache)
	users, err := svc.ListUsers(context.Background())

	assert.NoError(t, err)
	assert.Len(t, users, 2)
}
