package repository

import (
	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/pkg/logger"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(admin *model.Admin) error
	FindByEmail(email string) (*model.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(admin *model.Admin) error {
	admin.Email = model.NormalizeEmail(admin.Email)
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}

	if err := r.db.Create(admin).Error; err != nil {
		logger.Error("Failed to create admin in database", err, map[string]interface{}{
			"email": admin.Email,
		})
		return err
	}
	logger.Info("Admin created", map[string]interface{}{
		"admin_id": admin.ID,
		"email":    admin.Email,
	})
	return nil
}

func (r *adminRepository) FindByEmail(email string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.Where("email = ?", model.NormalizeEmail(email)).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
