package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"usermgmt/internal/auth"
	domainerrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
)

const bcryptCost = 10

// AuthService handles registration and password login.
type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, phoneNumber, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, err error)
}

type authService struct {
	repo         repository.UserRepository
	jwtService   *auth.JWTService
	verification VerificationService
}

// NewAuthService creates a new authentication service.
func NewAuthService(repo repository.UserRepository, jwtService *auth.JWTService, verification VerificationService) AuthService {
	return &authService{
		repo:         repo,
		jwtService:   jwtService,
		verification: verification,
	}
}

// Register creates an unverified user with a hashed password, then issues
// and emails a verification code. The code is issued exactly once, after
// the record exists. A failed email leaves the stored user and code in
// place; the caller sees the delivery error.
func (s *authService) Register(ctx context.Context, firstName, lastName, email, phoneNumber, password string) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domainerrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PhoneNumber:  phoneNumber,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.verification.IssueAndSend(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates by email and password and returns a signed bearer
// token. Unknown email and wrong password are indistinguishable to the
// caller, and verification state does not gate login.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domainerrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
