package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domainerrors "usermgmt/internal/errors"
	"usermgmt/internal/mailer"
	"usermgmt/internal/model"
	"usermgmt/internal/repository"
	"usermgmt/internal/verification"
)

// VerificationService manages one-time email verification codes: a single
// pending code per user, overwritten on reissue, valid for a fixed window.
type VerificationService interface {
	// IssueAndSend generates a fresh code, persists it on the user record,
	// then attempts delivery. The code stays stored even when delivery
	// fails, so a user who otherwise learns it can still verify.
	IssueAndSend(ctx context.Context, user *model.User) error
	// RequestCode reissues a code for the given email. Returns
	// alreadyVerified=true without touching the record when verification
	// has already completed.
	RequestCode(ctx context.Context, email string) (alreadyVerified bool, err error)
	// ConfirmCode consumes a pending code: on success the code is cleared
	// and the user marked verified. A consumed or absent code is invalid,
	// a matching but stale code is expired.
	ConfirmCode(ctx context.Context, email, code string) error
}

type verificationService struct {
	repo   repository.UserRepository
	sender mailer.Sender
	cache  Cache
	now    func() time.Time
}

// NewVerificationService creates a verification service. The cache is the
// same one UserService reads through; verification writes must invalidate
// it or GetUser keeps serving the pre-verification snapshot.
func NewVerificationService(repo repository.UserRepository, sender mailer.Sender, cache Cache) VerificationService {
	return &verificationService{
		repo:   repo,
		sender: sender,
		cache:  cache,
		now:    time.Now,
	}
}

func (s *verificationService) IssueAndSend(ctx context.Context, user *model.User) error {
	code, err := verification.Generate(verification.CodeLength)
	if err != nil {
		return fmt.Errorf("issue verification code: %w", err)
	}
	expiresAt := s.now().Add(verification.CodeTTL)

	user.VerificationCode = &code
	user.VerificationCodeExpiresAt = &expiresAt
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))

	// Store-then-notify: delivery failure is surfaced but the persisted
	// code is not rolled back.
	body := fmt.Sprintf("Your verification code is: %s\nIt expires in %d minutes.",
		code, int(verification.CodeTTL.Minutes()))
	if err := s.sender.Send(user.Email, "Email Verification", body); err != nil {
		return domainerrors.ErrEmailSendFailed
	}
	return nil
}

func (s *verificationService) RequestCode(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domainerrors.ErrUserNotFound
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	if user.IsEmailVerified {
		return true, nil
	}

	return false, s.IssueAndSend(ctx, user)
}

func (s *verificationService) ConfirmCode(ctx context.Context, email, code string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	// Exact string comparison; digits only, so no folding applies.
	if user.VerificationCode == nil || user.VerificationCodeExpiresAt == nil || *user.VerificationCode != code {
		return domainerrors.ErrCodeInvalid
	}
	if s.now().After(*user.VerificationCodeExpiresAt) {
		return domainerrors.ErrCodeExpired
	}

	user.IsEmailVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpiresAt = nil
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return nil
}
