package service

import (
	"errors"
	"fmt"

	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/carauction/carauction-backend/pkg/mailer"
	"github.com/carauction/carauction-backend/pkg/util"
	"gorm.io/gorm"
)

// PasswordResetService replaces a forgotten password after proving control of the email.
type PasswordResetService interface {
	SendCode(email string) error
	ResetPassword(email, code, newPassword string) error
}

type passwordResetService struct {
	customerRepo repository.CustomerRepository
	opts         CodeOptions
}

func NewPasswordResetService(customerRepo repository.CustomerRepository, opts CodeOptions) PasswordResetService {
	return &passwordResetService{
		customerRepo: customerRepo,
		opts:         opts.withDefaults(),
	}
}

// SendCode issues a reset code. Verified and unverified customers alike may reset.
func (s *passwordResetService) SendCode(email string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	customer, err := findCustomer(s.customerRepo, email)
	if err != nil {
		return err
	}
	return issueCode(s.opts, customer, "reset", mailer.ResetCodeEmail, s.customerRepo.SetResetCode)
}

func (s *passwordResetService) ResetPassword(email, code, newPassword string) error {
	if !util.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	customer, err := findCustomer(s.customerRepo, email)
	if err != nil {
		return err
	}

	now := s.opts.Clock()
	if err := checkCode(s.opts.Hasher, customer.ResetCode, customer.ResetIssuedAt, code, now); err != nil {
		logger.Warn("Reset code rejected", map[string]interface{}{
			"customer_id": customer.ID,
			"reason":      err.Error(),
		})
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err)
		return err
	}

	if err := s.customerRepo.ResetPassword(customer.ID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("reset password: %w", err)
	}

	logger.Info("Password reset successfully", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return nil
}
