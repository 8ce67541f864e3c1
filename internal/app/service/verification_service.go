package service

import (
	"errors"
	"fmt"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/carauction/carauction-backend/pkg/mailer"
	"gorm.io/gorm"
)

// VerificationService proves control of an account email with a one-time code.
type VerificationService interface {
	SendCode(email string) error
	VerifyCode(email, code string) error
}

type verificationService struct {
	customerRepo repository.CustomerRepository
	opts         CodeOptions
}

func NewVerificationService(customerRepo repository.CustomerRepository, opts CodeOptions) VerificationService {
	return &verificationService{
		customerRepo: customerRepo,
		opts:         opts.withDefaults(),
	}
}

func (s *verificationService) SendCode(email string) error {
	customer, err := findCustomer(s.customerRepo, email)
	if err != nil {
		return err
	}
	if customer.Verified {
		logger.Warn("Verification code requested for verified customer", map[string]interface{}{
			"customer_id": customer.ID,
		})
		return ErrAlreadyVerified
	}

	return issueCode(s.opts, customer, "verification", mailer.VerificationCodeEmail, s.customerRepo.SetVerificationCode)
}

func (s *verificationService) VerifyCode(email, code string) error {
	customer, err := findCustomer(s.customerRepo, email)
	if err != nil {
		return err
	}
	if customer.Verified {
		return ErrAlreadyVerified
	}

	now := s.opts.Clock()
	if err := checkCode(s.opts.Hasher, customer.VerificationCode, customer.VerificationIssuedAt, code, now); err != nil {
		logger.Warn("Verification code rejected", map[string]interface{}{
			"customer_id": customer.ID,
			"reason":      err.Error(),
		})
		return err
	}

	if err := s.customerRepo.MarkVerified(customer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("mark verified: %w", err)
	}

	logger.Info("Customer verified", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return nil
}

// findCustomer maps a missing record to ErrCustomerNotFound.
func findCustomer(repo repository.CustomerRepository, email string) (*model.Customer, error) {
	customer, err := repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("Failed to look up customer", err, map[string]interface{}{
			"email": email,
		})
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return customer, nil
}
