package repository

import (
	"time"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindByID(id uint) (*model.Customer, error)
	FindByEmail(email string) (*model.Customer, error)
	Update(customer *model.Customer) error
	SetVerificationCode(id uint, codeHash string, issuedAt time.Time) error
	MarkVerified(id uint) error
	SetResetCode(id uint, codeHash string, issuedAt time.Time) error
	ResetPassword(id uint, passwordHash string) error
	UpdatePassword(id uint, passwordHash string) error
	ClearExpiredCodes(cutoff time.Time) (int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *model.Customer) error {
	customer.Email = model.NormalizeEmail(customer.Email)

	logger.Debug("Creating customer in database", map[string]interface{}{
		"email": customer.Email,
	})

	if err := r.db.Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"email": customer.Email,
		})
		return err
	}

	logger.Debug("Customer created in database", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return nil
}

func (r *customerRepository) FindByID(id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		logger.Warn("Customer lookup by ID failed", map[string]interface{}{
			"customer_id": id,
			"error":       err.Error(),
		})
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByEmail(email string) (*model.Customer, error) {
	email = model.NormalizeEmail(email)

	var customer model.Customer
	if err := r.db.Where("email = ?", email).First(&customer).Error; err != nil {
		logger.Debug("Customer lookup by email failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}
	return &customer, nil
}

// Update saves profile fields. Credential and code columns have dedicated methods.
func (r *customerRepository) Update(customer *model.Customer) error {
	err := r.db.Model(customer).
		Select("name", "phone_number", "address", "profile_image").
		Updates(customer).Error
	if err != nil {
		logger.Error("Failed to update customer in database", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}

// SetVerificationCode overwrites any outstanding verification code.
func (r *customerRepository) SetVerificationCode(id uint, codeHash string, issuedAt time.Time) error {
	return r.updateColumns(id, "set verification code", map[string]interface{}{
		"verification_code":      codeHash,
		"verification_issued_at": issuedAt,
	})
}

// MarkVerified sets the verified flag and consumes the verification code in one statement.
func (r *customerRepository) MarkVerified(id uint) error {
	return r.updateColumns(id, "mark verified", map[string]interface{}{
		"verified":               true,
		"verification_code":      nil,
		"verification_issued_at": nil,
	})
}

// SetResetCode overwrites any outstanding password reset code.
func (r *customerRepository) SetResetCode(id uint, codeHash string, issuedAt time.Time) error {
	return r.updateColumns(id, "set reset code", map[string]interface{}{
		"reset_code":      codeHash,
		"reset_issued_at": issuedAt,
	})
}

// ResetPassword replaces the hash and consumes the reset code in one statement.
func (r *customerRepository) ResetPassword(id uint, passwordHash string) error {
	return r.updateColumns(id, "reset password", map[string]interface{}{
		"password_hash":   passwordHash,
		"reset_code":      nil,
		"reset_issued_at": nil,
	})
}

func (r *customerRepository) UpdatePassword(id uint, passwordHash string) error {
	return r.updateColumns(id, "update password", map[string]interface{}{
		"password_hash": passwordHash,
	})
}

// ClearExpiredCodes nulls every code pair issued before cutoff.
func (r *customerRepository) ClearExpiredCodes(cutoff time.Time) (int64, error) {
	var cleared int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Customer{}).
			Where("verification_issued_at IS NOT NULL AND verification_issued_at < ?", cutoff).
			Updates(map[string]interface{}{
				"verification_code":      nil,
				"verification_issued_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		cleared += res.RowsAffected

		res = tx.Model(&model.Customer{}).
			Where("reset_issued_at IS NOT NULL AND reset_issued_at < ?", cutoff).
			Updates(map[string]interface{}{
				"reset_code":      nil,
				"reset_issued_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		cleared += res.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("Failed to clear expired codes", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, err
	}
	return cleared, nil
}

func (r *customerRepository) updateColumns(id uint, op string, columns map[string]interface{}) error {
	res := r.db.Model(&model.Customer{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		logger.Error("Failed to update customer in database", res.Error, map[string]interface{}{
			"customer_id": id,
			"operation":   op,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Customer updated in database", map[string]interface{}{
		"customer_id": id,
		"operation":   op,
	})
	return nil
}
