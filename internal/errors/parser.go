package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed database error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError turns a storage error into a client-safe code and message.
// Driver details are never exposed; context names the resource ("post", "customer").
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return internalInfo(context)
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// PostgreSQL 23505 / SQLite UNIQUE
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// PostgreSQL 23503
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{
				Status:  http.StatusConflict,
				Code:    ResourceConflict,
				Message: "Linked records exist, cannot delete",
			}
		}
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: "Referenced record does not exist",
		}
	}

	// PostgreSQL 23502
	if strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalDatabaseError,
			Message: "Database unavailable, please try again later",
		}
	}

	return internalInfo(context)
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	// Duplicate email keeps status 400 for client compatibility.
	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    AuthEmailAlreadyExists,
			Message: "Email already in use",
		}
	}
	return ErrorInfo{
		Status:  http.StatusConflict,
		Code:    ResourceAlreadyExists,
		Message: "Record already exists",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "customer"):
		return "Customer not found"
	case strings.Contains(contextLower, "admin"):
		return "Admin not found"
	case strings.Contains(contextLower, "post"):
		return "Post not found"
	}
	return "Requested resource not found"
}

func internalInfo(context string) ErrorInfo {
	contextLower := strings.ToLower(context)

	message := "Internal server error, please try again later"
	switch {
	case strings.Contains(contextLower, "create"):
		message = "Failed to create record, please try again later"
	case strings.Contains(contextLower, "update"):
		message = "Failed to update record, please try again later"
	case strings.Contains(contextLower, "delete"):
		message = "Failed to delete record, please try again later"
	}
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: message,
	}
}

// ParseAndRespond parses err and writes the envelope with the matching status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Success: false,
		Error:   info.Code,
		Message: info.Message,
	})
}
