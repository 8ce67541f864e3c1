package controller

import (
	"net/http"
	"strings"
	"testing"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/carauction/carauction-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

func TestAuthController_Signup(t *testing.T) {
	s := setupControllerTest(t)

	w := s.doMultipart(t, "/api/auth/signup", "", map[string]string{
		"email":       "Seller@Example.com",
		"password":    "secret1",
		"name":        "Seller",
		"phoneNumber": "010-0000-0000",
	}, &filePart{field: "profileImage", filename: "me.png", contentType: "image/png", content: pngBytes})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"seller@example.com"`)
	assert.Contains(t, w.Body.String(), `"profileImage":"/images/profiles/user-`)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.Len(t, s.uploadedFiles(t, "profiles"), 1)

	customer, err := s.customerRepo.FindByEmail("seller@example.com")
	require.NoError(t, err)
	assert.False(t, customer.Verified)
}

func TestAuthController_SignupDuplicateStoresNothing(t *testing.T) {
	s := setupControllerTest(t)
	s.createCustomer(t, "taken@example.com", "secret1", false)

	w := s.doMultipart(t, "/api/auth/signup", "", map[string]string{
		"email":    "TAKEN@example.com",
		"password": "secret1",
		"name":     "Copycat",
	}, &filePart{field: "profileImage", filename: "me.png", contentType: "image/png", content: pngBytes})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTH_EMAIL_EXISTS", decode(t, w).Error)
	assert.Empty(t, s.uploadedFiles(t, "profiles"))
}

func TestAuthController_SignupValidation(t *testing.T) {
	s := setupControllerTest(t)

	tests := []struct {
		name      string
		fields    map[string]string
		file      *filePart
		wantCode  string
		wantField string
	}{
		{
			name:      "Invalid email",
			fields:    map[string]string{"email": "nope", "password": "secret1", "name": "A"},
			wantCode:  "VALIDATION_INVALID_INPUT",
			wantField: "email",
		},
		{
			name:      "Short password",
			fields:    map[string]string{"email": "a@example.com", "password": "12345", "name": "A"},
			wantCode:  "VALIDATION_INVALID_INPUT",
			wantField: "password",
		},
		{
			name:      "Missing name",
			fields:    map[string]string{"email": "a@example.com", "password": "secret1"},
			wantCode:  "VALIDATION_INVALID_INPUT",
			wantField: "name",
		},
		{
			name:     "Wrong file type",
			fields:   map[string]string{"email": "a@example.com", "password": "secret1", "name": "A"},
			file:     &filePart{field: "profileImage", filename: "cv.pdf", contentType: "application/pdf", content: []byte("%PDF")},
			wantCode: "UPLOAD_INVALID_FILE_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doMultipart(t, "/api/auth/signup", "", tt.fields, tt.file)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error)
			if tt.wantField != "" {
				assert.Contains(t, env.Fields, tt.wantField)
			}
		})
	}

	_, err := s.customerRepo.FindByEmail("a@example.com")
	assert.Error(t, err, "no customer may be created by a rejected signup")
}

func TestAuthController_Login(t *testing.T) {
	s := setupControllerTest(t)
	customer, _ := s.createCustomer(t, "buyer@example.com", "secret1", false)

	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "buyer@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	claims, err := util.ValidateToken(env.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, claims.UserID)

	cookie := w.Result().Cookies()[0]
	assert.Equal(t, middleware.AuthCookieName, cookie.Name)
	assert.Equal(t, "Bearer+"+env.Token, cookie.Value)
	assert.Equal(t, 8*60*60, cookie.MaxAge)
	assert.False(t, cookie.Secure)
	assert.False(t, cookie.HttpOnly)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "buyer@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_INVALID_CREDENTIALS", decode(t, w).Error)
}

func TestAuthController_AdminLogin(t *testing.T) {
	s := setupControllerTest(t)
	hash, err := util.HashPassword("AdminPass1")
	require.NoError(t, err)
	require.NoError(t, s.adminRepo.Create(&model.Admin{Name: "root", Email: "admin@example.com", PasswordHash: hash}))

	w := s.do(t, http.MethodPost, "/api/auth/admin-login", "", map[string]string{
		"name":     "root",
		"email":    "admin@example.com",
		"password": "AdminPass1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":{`)
	assert.NotContains(t, w.Body.String(), "AdminPass1")

	w = s.do(t, http.MethodPost, "/api/auth/admin-login", "", map[string]string{
		"name":     "root",
		"email":    "admin@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_MeAndSignout(t *testing.T) {
	s := setupControllerTest(t)
	_, token := s.createCustomer(t, "me@example.com", "secret1", true)

	w := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"me@example.com"`)
	assert.Contains(t, w.Body.String(), `"verified":true`)

	w = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	setCookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(setCookie, middleware.AuthCookieName+"="))
	assert.Contains(t, setCookie, "Max-Age=0")
}

func TestAuthController_VerificationFlow(t *testing.T) {
	tests := []struct {
		name string
		code func(code string) interface{}
	}{
		{name: "Numeric providedCode", code: func(code string) interface{} { return jsonNumber(code) }},
		{name: "String providedCode", code: func(code string) interface{} { return code }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupControllerTest(t)
			s.createCustomer(t, "new@example.com", "secret1", false)

			w := s.do(t, http.MethodPatch, "/api/auth/send-verification-code", "", map[string]string{"email": "new@example.com"})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			code := s.mailer.lastCode(t)
			w = s.do(t, http.MethodPatch, "/api/auth/verify-verification-code", "", map[string]interface{}{
				"email":        "new@example.com",
				"providedCode": tt.code(code),
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			customer, err := s.customerRepo.FindByEmail("new@example.com")
			require.NoError(t, err)
			assert.True(t, customer.Verified)
			assert.False(t, customer.HasPendingVerification())

			w = s.do(t, http.MethodPatch, "/api/auth/verify-verification-code", "", map[string]interface{}{
				"email":        "new@example.com",
				"providedCode": tt.code(code),
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "AUTH_ALREADY_VERIFIED", decode(t, w).Error)
		})
	}
}

func TestAuthController_VerificationErrors(t *testing.T) {
	s := setupControllerTest(t)
	s.createCustomer(t, "new@example.com", "secret1", false)
	s.createCustomer(t, "done@example.com", "secret1", true)

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Send to unknown customer",
			path:       "/api/auth/send-verification-code",
			body:       map[string]string{"email": "ghost@example.com"},
			wantStatus: http.StatusNotFound,
			wantCode:   "AUTH_CUSTOMER_NOT_FOUND",
		},
		{
			name:       "Send to verified customer",
			path:       "/api/auth/send-verification-code",
			body:       map[string]string{"email": "done@example.com"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "AUTH_ALREADY_VERIFIED",
		},
		{
			name:       "Verify without pending code",
			path:       "/api/auth/verify-verification-code",
			body:       map[string]interface{}{"email": "new@example.com", "providedCode": 123456},
			wantStatus: http.StatusBadRequest,
			wantCode:   "AUTH_CODE_MISSING",
		},
		{
			name:       "Non-numeric code",
			path:       "/api/auth/verify-verification-code",
			body:       map[string]interface{}{"email": "new@example.com", "providedCode": "12ab56"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_INVALID_INPUT",
		},
		{
			name:       "Boolean code",
			path:       "/api/auth/verify-verification-code",
			body:       `{"email":"new@example.com","providedCode":true}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_INVALID_INPUT",
		},
		{
			name:       "Malformed JSON",
			path:       "/api/auth/send-verification-code",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPatch, tt.path, "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode(t, w).Error)
		})
	}

	w := s.do(t, http.MethodPatch, "/api/auth/send-verification-code", "", map[string]string{"email": "new@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	code := s.mailer.lastCode(t)
	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	w = s.do(t, http.MethodPatch, "/api/auth/verify-verification-code", "", map[string]interface{}{
		"email":        "new@example.com",
		"providedCode": wrong,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTH_CODE_INVALID", decode(t, w).Error)
}

func TestAuthController_ForgotPasswordFlow(t *testing.T) {
	s := setupControllerTest(t)
	s.createCustomer(t, "forgetful@example.com", "secret1", false)

	w := s.do(t, http.MethodPatch, "/api/auth/send-forgot-password-code", "", map[string]string{"email": "forgetful@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	code := s.mailer.lastCode(t)

	w = s.do(t, http.MethodPatch, "/api/auth/verify-forgot-password-code", "", map[string]interface{}{
		"email":        "forgetful@example.com",
		"providedCode": code,
		"newPassword":  "weak",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields, "newPassword")

	w = s.do(t, http.MethodPatch, "/api/auth/verify-forgot-password-code", "", map[string]interface{}{
		"email":        "forgetful@example.com",
		"providedCode": jsonNumber(code),
		"newPassword":  "Remembered1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "forgetful@example.com",
		"password": "Remembered1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, "/api/auth/verify-forgot-password-code", "", map[string]interface{}{
		"email":        "forgetful@example.com",
		"providedCode": code,
		"newPassword":  "Another123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTH_CODE_MISSING", decode(t, w).Error)
}

func TestAuthController_ChangePassword(t *testing.T) {
	s := setupControllerTest(t)
	_, unverifiedToken := s.createCustomer(t, "new@example.com", "OldPass123", false)
	_, verifiedToken := s.createCustomer(t, "ok@example.com", "OldPass123", true)

	tests := []struct {
		name       string
		token      string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Unauthenticated",
			body:       map[string]string{"oldPassword": "OldPass123", "newPassword": "NewPass123"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_UNAUTHORIZED",
		},
		{
			name:       "Weak new password",
			token:      verifiedToken,
			body:       map[string]string{"oldPassword": "OldPass123", "newPassword": "newpass"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_INVALID_INPUT",
		},
		{
			name:       "Unverified account",
			token:      unverifiedToken,
			body:       map[string]string{"oldPassword": "OldPass123", "newPassword": "NewPass123"},
			wantStatus: http.StatusForbidden,
			wantCode:   "AUTH_NOT_VERIFIED",
		},
		{
			name:       "Wrong old password",
			token:      verifiedToken,
			body:       map[string]string{"oldPassword": "Guess12345", "newPassword": "NewPass123"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH_INVALID_OLD_PASSWORD",
		},
		{
			name:       "Success",
			token:      verifiedToken,
			body:       map[string]string{"oldPassword": "OldPass123", "newPassword": "NewPass123"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPatch, "/api/auth/change-password", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode(t, w).Error)
			}
		})
	}
}
