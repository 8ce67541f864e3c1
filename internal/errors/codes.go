package errors

// Error codes returned in the "error" field of every failure response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED" // signed out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthCustomerNotFound   = "AUTH_CUSTOMER_NOT_FOUND"
	AuthNotVerified        = "AUTH_NOT_VERIFIED" // account email not verified yet
	AuthAlreadyVerified    = "AUTH_ALREADY_VERIFIED"
	AuthCodeMissing        = "AUTH_CODE_MISSING" // no outstanding code
	AuthCodeExpired        = "AUTH_CODE_EXPIRED"
	AuthCodeInvalid        = "AUTH_CODE_INVALID"
	AuthInvalidOldPassword = "AUTH_INVALID_OLD_PASSWORD"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Posts (POST_) ====================
	PostNotFound = "POST_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // jpeg, jpg, png, gif only
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // 5 MiB cap
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Mail (MAIL_) ====================
	MailDispatchFailed = "MAIL_DISPATCH_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
