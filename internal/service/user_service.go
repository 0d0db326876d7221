package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domainerrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// Cache is the subset of the redis wrapper the services depend on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// userCacheKey is shared by every service that reads or mutates users, so
// any write path can invalidate what GetUser primed.
func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// UserService exposes profile read and mutation operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpdateProfile mutates name and phone only. Email, password hash and
	// verification state are not reachable through this path.
	UpdateProfile(ctx context.Context, id uint, firstName, lastName, phoneNumber string) error
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo  repository.UserRepository
	cache Cache
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache Cache) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, firstName, lastName, phoneNumber string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrUserNotFound
		}
		return err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.PhoneNumber = phoneNumber
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(id))
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrUserNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(id))
	return nil
}
