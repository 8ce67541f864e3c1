package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	adminSheet    = "Admins"
	customerSheet = "Customers"
)

type adminRow struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type customerRow struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Address     string
	Verified    bool
}

type workbook struct {
	Admins    []adminRow
	Customers []customerRow
}

type seedResult struct {
	Admins    int
	Customers int
	Skipped   int
}

// readWorkbook parses both sheets. A missing sheet is treated as empty; the
// first row of each sheet is a header.
func readWorkbook(f *excelize.File) (*workbook, error) {
	wb := &workbook{}

	adminRows, err := sheetRows(f, adminSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range adminRows {
		name, email, password := cell(row, 0), cell(row, 1), cell(row, 2)
		if email == "" && name == "" {
			continue
		}
		if name == "" || email == "" || password == "" {
			return nil, fmt.Errorf("%s row %d: name, email and password are required", adminSheet, i+2)
		}
		role := cell(row, 3)
		if role == "" {
			role = model.RoleAdmin
		}
		wb.Admins = append(wb.Admins, adminRow{Name: name, Email: email, Password: password, Role: role})
	}

	customerRows, err := sheetRows(f, customerSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range customerRows {
		email, password, name := cell(row, 0), cell(row, 1), cell(row, 2)
		if email == "" && name == "" {
			continue
		}
		if email == "" || password == "" || name == "" {
			return nil, fmt.Errorf("%s row %d: email, password and name are required", customerSheet, i+2)
		}
		wb.Customers = append(wb.Customers, customerRow{
			Email:       email,
			Password:    password,
			Name:        name,
			PhoneNumber: cell(row, 3),
			Address:     cell(row, 4),
			Verified:    parseBool(cell(row, 5)),
		})
	}

	return wb, nil
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

// seed inserts every row whose email is not taken yet.
func seed(wb *workbook, adminRepo repository.AdminRepository, customerRepo repository.CustomerRepository) (seedResult, error) {
	var result seedResult

	for _, row := range wb.Admins {
		if _, err := adminRepo.FindByEmail(row.Email); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, err
		}

		hash, err := util.HashPassword(row.Password)
		if err != nil {
			return result, err
		}
		admin := &model.Admin{
			Name:         row.Name,
			Email:        row.Email,
			Role:         row.Role,
			PasswordHash: hash,
		}
		if err := adminRepo.Create(admin); err != nil {
			return result, fmt.Errorf("create admin %s: %w", row.Email, err)
		}
		result.Admins++
	}

	for _, row := range wb.Customers {
		if _, err := customerRepo.FindByEmail(row.Email); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, err
		}

		hash, err := util.HashPassword(row.Password)
		if err != nil {
			return result, err
		}
		customer := &model.Customer{
			Email:        row.Email,
			Name:         row.Name,
			PhoneNumber:  row.PhoneNumber,
			Address:      row.Address,
			PasswordHash: hash,
		}
		if err := customerRepo.Create(customer); err != nil {
			return result, fmt.Errorf("create customer %s: %w", row.Email, err)
		}
		if row.Verified {
			if err := customerRepo.MarkVerified(customer.ID); err != nil {
				return result, err
			}
		}
		result.Customers++
	}

	return result, nil
}
