package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/carauction/carauction-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("you must be verified to change your password")
	ErrInvalidOldPassword = errors.New("invalid old password")
	ErrRevocationFailed   = errors.New("failed to revoke token")
)

// TokenRevoker blacklists session tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Email        string
	Password     string
	Name         string
	PhoneNumber  string
	Address      string
	ProfileImage string
}

type AuthService interface {
	Signup(input SignupInput) (*model.Customer, error)
	Login(email, password string) (*model.Customer, string, error)
	AdminLogin(name, email, password string) (*model.Admin, string, error)
	Signout(ctx context.Context, token string, expiresAt time.Time) error
	ChangePassword(customerID uint, oldPassword, newPassword string) error
	GetMe(customerID uint) (*model.Customer, error)
	EmailExists(email string) (bool, error)
}

type authService struct {
	customerRepo repository.CustomerRepository
	adminRepo    repository.AdminRepository
	revoker      TokenRevoker
	jwtSecret    string
	tokenExpiry  time.Duration
}

// NewAuthService builds the service. revoker may be nil, in which case signout
// only clears the client cookie.
func NewAuthService(
	customerRepo repository.CustomerRepository,
	adminRepo repository.AdminRepository,
	revoker TokenRevoker,
	jwtSecret string,
	tokenExpiry time.Duration,
) AuthService {
	return &authService{
		customerRepo: customerRepo,
		adminRepo:    adminRepo,
		revoker:      revoker,
		jwtSecret:    jwtSecret,
		tokenExpiry:  tokenExpiry,
	}
}

// EmailExists lets the signup handler reject duplicates before storing an upload.
func (s *authService) EmailExists(email string) (bool, error) {
	_, err := s.customerRepo.FindByEmail(email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (s *authService) Signup(input SignupInput) (*model.Customer, error) {
	email := model.NormalizeEmail(input.Email)
	logger.Info("Attempting customer signup", map[string]interface{}{
		"email": email,
	})

	exists, err := s.EmailExists(email)
	if err != nil {
		logger.Error("Failed to check existing customer", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if exists {
		logger.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	customer := &model.Customer{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		Address:      strings.TrimSpace(input.Address),
		ProfileImage: input.ProfileImage,
		PasswordHash: hashedPassword,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("Customer signed up successfully", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return customer, nil
}

func (s *authService) Login(email, password string) (*model.Customer, string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	customer, err := s.customerRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: customer not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to find customer", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(customer.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"customer_id": customer.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(customer.ID, customer.Email, customer.Verified, model.RoleCustomer, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return nil, "", err
	}

	logger.Info("Customer logged in successfully", map[string]interface{}{
		"customer_id": customer.ID,
		"verified":    customer.Verified,
	})
	return customer, token, nil
}

// AdminLogin authenticates by email and password. The name is accepted for
// parity with the admin console form and is not part of the credential.
func (s *authService) AdminLogin(name, email, password string) (*model.Admin, string, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	admin, err := s.adminRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !util.VerifyPassword(admin.PasswordHash, password) {
		logger.Warn("Admin login failed: invalid password", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(admin.ID, admin.Email, true, admin.Role, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return admin, token, nil
}

func (s *authService) Signout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.revoker == nil || token == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, token, time.Until(expiresAt)); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationFailed, err)
	}
	return nil
}

// ChangePassword requires a verified account and the current password.
func (s *authService) ChangePassword(customerID uint, oldPassword, newPassword string) error {
	if !util.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	customer, err := s.GetMe(customerID)
	if err != nil {
		return err
	}
	if !customer.Verified {
		logger.Warn("Unverified customer attempted password change", map[string]interface{}{
			"customer_id": customerID,
		})
		return ErrNotVerified
	}
	if !util.VerifyPassword(customer.PasswordHash, oldPassword) {
		logger.Warn("Password change failed: invalid old password", map[string]interface{}{
			"customer_id": customerID,
		})
		return ErrInvalidOldPassword
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.customerRepo.UpdatePassword(customerID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}

	logger.Info("Password updated successfully", map[string]interface{}{
		"customer_id": customerID,
	})
	return nil
}

func (s *authService) GetMe(customerID uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("Failed to fetch customer", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}
	return customer, nil
}
