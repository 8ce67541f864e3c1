package controller

import (
	"net/http"
	"time"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/service"
	apperrors "github.com/carauction/carauction-backend/internal/errors"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/carauction/carauction-backend/internal/storage"
	"github.com/carauction/carauction-backend/internal/validation"
	"github.com/gin-gonic/gin"
)

const profileImageFolder = "profiles"

// CookieOptions controls the session cookie set on login.
type CookieOptions struct {
	Secure bool // HttpOnly and Secure, production only
	MaxAge time.Duration
}

type AuthController struct {
	authService          service.AuthService
	verificationService  service.VerificationService
	passwordResetService service.PasswordResetService
	storage              storage.Storage
	cookie               CookieOptions
}

func NewAuthController(
	authService service.AuthService,
	verificationService service.VerificationService,
	passwordResetService service.PasswordResetService,
	store storage.Storage,
	cookie CookieOptions,
) *AuthController {
	return &AuthController{
		authService:          authService,
		verificationService:  verificationService,
		passwordResetService: passwordResetService,
		storage:              store,
		cookie:               cookie,
	}
}

type SignupRequest struct {
	Email       string `form:"email" binding:"required,email,max=255"`
	Password    string `form:"password" binding:"required,min=6"`
	Name        string `form:"name" binding:"required,max=100"`
	PhoneNumber string `form:"phoneNumber" binding:"omitempty,max=20"`
	Address     string `form:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type AdminLoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email        string                  `json:"email" binding:"required,email"`
	ProvidedCode validation.ProvidedCode `json:"providedCode" binding:"required,providedcode"`
}

type ResetPasswordRequest struct {
	Email        string                  `json:"email" binding:"required,email"`
	ProvidedCode validation.ProvidedCode `json:"providedCode" binding:"required,providedcode"`
	NewPassword  string                  `json:"newPassword" binding:"required,strongpassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,strongpassword"`
}

func customerResponse(customer *model.Customer) gin.H {
	return gin.H{
		"id":           customer.ID,
		"email":        customer.Email,
		"name":         customer.Name,
		"phoneNumber":  customer.PhoneNumber,
		"address":      customer.Address,
		"profileImage": customer.ProfileImage,
		"verified":     customer.Verified,
		"createdAt":    customer.CreatedAt,
	}
}

// Signup handles customer registration with an optional profile image
// POST /api/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	// reject duplicates before anything is written to storage
	exists, err := ctrl.authService.EmailExists(req.Email)
	if err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}
	if exists {
		log.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": req.Email,
		})
		respondWithServiceError(c, service.ErrEmailAlreadyExists, "customer")
		return
	}

	profileImage, ok := saveUpload(c, ctrl.storage, "profileImage", profileImageFolder)
	if !ok {
		return
	}

	customer, err := ctrl.authService.Signup(service.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		ProfileImage: profileImage,
	})
	if err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Your account has been created successfully",
		"user":    customerResponse(customer),
	})
}

// Login handles customer login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	_, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	ctrl.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"token":   token,
	})
}

// AdminLogin handles admin console login
// POST /api/auth/admin-login
func (ctrl *AuthController) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	admin, token, err := ctrl.authService.AdminLogin(req.Name, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(c, err, "admin")
		return
	}

	ctrl.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin logged in successfully",
		"admin":   admin,
		"token":   token,
	})
}

// Signout clears the session cookie and revokes the token
// POST /api/auth/signout
func (ctrl *AuthController) Signout(c *gin.Context) {
	token, expiresAt, _ := middleware.GetToken(c)
	if err := ctrl.authService.Signout(c.Request.Context(), token, expiresAt); err != nil {
		respondWithServiceError(c, err, "session")
		return
	}

	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", ctrl.cookie.Secure, ctrl.cookie.Secure)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated customer
// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	customer, err := ctrl.authService.GetMe(userID)
	if err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    customerResponse(customer),
	})
}

// SendVerificationCode emails a fresh verification code
// PATCH /api/auth/send-verification-code
func (ctrl *AuthController) SendVerificationCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := ctrl.verificationService.SendCode(req.Email); err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Code sent!",
	})
}

// VerifyVerificationCode marks the account verified
// PATCH /api/auth/verify-verification-code
func (ctrl *AuthController) VerifyVerificationCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := ctrl.verificationService.VerifyCode(req.Email, req.ProvidedCode.String()); err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Your account has been verified!",
	})
}

// ChangePassword replaces the password of a verified customer
// PATCH /api/auth/change-password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := ctrl.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated!",
	})
}

// SendForgotPasswordCode emails a password reset code
// PATCH /api/auth/send-forgot-password-code
func (ctrl *AuthController) SendForgotPasswordCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := ctrl.passwordResetService.SendCode(req.Email); err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Code sent!",
	})
}

// VerifyForgotPasswordCode checks the reset code and sets the new password
// PATCH /api/auth/verify-forgot-password-code
func (ctrl *AuthController) VerifyForgotPasswordCode(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := ctrl.passwordResetService.ResetPassword(req.Email, req.ProvidedCode.String(), req.NewPassword); err != nil {
		respondWithServiceError(c, err, "customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated!",
	})
}

func (ctrl *AuthController) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(
		middleware.AuthCookieName,
		"Bearer "+token,
		int(ctrl.cookie.MaxAge.Seconds()),
		"/",
		"",
		ctrl.cookie.Secure,
		ctrl.cookie.Secure,
	)
}
