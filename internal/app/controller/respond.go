package controller

import (
	"errors"
	"net/http"

	"github.com/carauction/carauction-backend/internal/app/service"
	apperrors "github.com/carauction/carauction-backend/internal/errors"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/carauction/carauction-backend/internal/storage"
	"github.com/carauction/carauction-backend/internal/validation"
	"github.com/gin-gonic/gin"
)

// serviceErrors maps workflow sentinels to their HTTP responses.
var serviceErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{service.ErrCustomerNotFound, http.StatusNotFound, apperrors.AuthCustomerNotFound, "Customer does not exist"},
	{service.ErrAlreadyVerified, http.StatusBadRequest, apperrors.AuthAlreadyVerified, "You are already verified"},
	{service.ErrNoPendingCode, http.StatusBadRequest, apperrors.AuthCodeMissing, "No valid verification code found"},
	{service.ErrCodeExpired, http.StatusBadRequest, apperrors.AuthCodeExpired, "Code has expired"},
	{service.ErrInvalidCode, http.StatusBadRequest, apperrors.AuthCodeInvalid, "Invalid code"},
	{service.ErrDispatchFailed, http.StatusInternalServerError, apperrors.MailDispatchFailed, "Failed to send code"},
	{service.ErrEmailAlreadyExists, http.StatusBadRequest, apperrors.AuthEmailAlreadyExists, "User already exists with this email"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password"},
	{service.ErrNotVerified, http.StatusForbidden, apperrors.AuthNotVerified, "You must be verified to change your password"},
	{service.ErrInvalidOldPassword, http.StatusUnauthorized, apperrors.AuthInvalidOldPassword, "Invalid old password"},
	{service.ErrRevocationFailed, http.StatusInternalServerError, apperrors.InternalServerError, "Failed to sign out, please try again later"},
	{service.ErrPostNotFound, http.StatusNotFound, apperrors.PostNotFound, "Post not found"},
	{service.ErrPostForbidden, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You are not allowed to modify this post"},
}

// respondWithServiceError writes the envelope for err. Unknown errors are
// logged and parsed as storage failures.
func respondWithServiceError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	if errors.Is(err, service.ErrWeakPassword) {
		apperrors.RespondWithValidationError(c, map[string]string{
			"newPassword": "New password must be at least 8 characters and contain a lowercase letter, an uppercase letter and a digit",
		})
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error("Request failed", err, map[string]interface{}{
					"context": context,
				})
			}
			apperrors.RespondWithError(c, m.status, m.code, m.message)
			return
		}
	}

	log.Error("Unexpected error", err, map[string]interface{}{
		"context": context,
	})
	apperrors.ParseAndRespond(c, err, context)
}

func respondWithBindError(c *gin.Context, err error) {
	fields := validation.FieldErrors(err)
	middleware.GetLoggerFromContext(c).Warn("Invalid request", map[string]interface{}{
		"fields": fields,
	})
	apperrors.RespondWithValidationError(c, fields)
}

// saveUpload stores the multipart file under field, if any. It returns ok=false
// after writing an error response.
func saveUpload(c *gin.Context, store storage.Storage, field, folder string) (url string, ok bool) {
	log := middleware.GetLoggerFromContext(c)

	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid file upload")
		return "", false
	}

	file, err := header.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to read uploaded file")
		return "", false
	}
	defer file.Close()

	url, err = store.Save(c.Request.Context(), folder, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	switch {
	case err == nil:
		log.Info("File uploaded", map[string]interface{}{
			"folder": folder,
			"url":    url,
			"size":   header.Size,
		})
		return url, true
	case errors.Is(err, storage.ErrInvalidFileType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only jpeg, jpg, png and gif images are allowed")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "File exceeds the 5 MiB limit")
	default:
		log.Error("Failed to store upload", err, map[string]interface{}{
			"folder": folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to store uploaded file")
	}
	return "", false
}
