package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/internal/app/service"
	"github.com/carauction/carauction-backend/internal/db"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/carauction/carauction-backend/internal/storage"
	"github.com/carauction/carauction-backend/internal/validation"
	"github.com/carauction/carauction-backend/pkg/mailer"
	"github.com/carauction/carauction-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "controller-test-jwt-secret"
	testHMACSecret = "controller-test-hmac-secret"
)

var codePattern = regexp.MustCompile(`>(\d{6})<`)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) lastCode(t *testing.T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no email was sent")
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].HTML)
	require.Len(t, match, 2)
	return match[1]
}

type testServer struct {
	router       *gin.Engine
	customerRepo repository.CustomerRepository
	adminRepo    repository.AdminRepository
	mailer       *recordingMailer
	uploadDir    string
}

func setupControllerTest(t *testing.T) *testServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	validation.Register()
	gin.SetMode(gin.TestMode)

	customerRepo := repository.NewCustomerRepository(testDB)
	adminRepo := repository.NewAdminRepository(testDB)
	postRepo := repository.NewPostRepository(testDB)

	hasher, err := util.NewCodeHasher(testHMACSecret)
	require.NoError(t, err)
	mail := &recordingMailer{}
	opts := service.CodeOptions{Hasher: hasher, Mailer: mail}

	uploadDir := t.TempDir()
	store := storage.NewLocalStorage(uploadDir, "/images")

	authController := NewAuthController(
		service.NewAuthService(customerRepo, adminRepo, nil, testJWTSecret, 8*time.Hour),
		service.NewVerificationService(customerRepo, opts),
		service.NewPasswordResetService(customerRepo, opts),
		store,
		CookieOptions{MaxAge: 8 * time.Hour},
	)
	postController := NewPostController(service.NewPostService(postRepo, customerRepo, nil), store)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, nil)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	authenticated := authMiddleware.Authenticate()

	auth := router.Group("/api/auth")
	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.POST("/admin-login", authController.AdminLogin)
	auth.POST("/signout", authenticated, authController.Signout)
	auth.GET("/me", authenticated, authController.Me)
	auth.PATCH("/send-verification-code", authController.SendVerificationCode)
	auth.PATCH("/verify-verification-code", authController.VerifyVerificationCode)
	auth.PATCH("/change-password", authenticated, authController.ChangePassword)
	auth.PATCH("/send-forgot-password-code", authController.SendForgotPasswordCode)
	auth.PATCH("/verify-forgot-password-code", authController.VerifyForgotPasswordCode)

	posts := router.Group("/api/posts")
	posts.GET("", postController.ListPosts)
	posts.GET("/:id", postController.GetPost)
	posts.POST("", authenticated, postController.CreatePost)
	posts.POST("/images", authenticated, postController.UploadImage)
	posts.PUT("/:id", authenticated, postController.UpdatePost)
	posts.DELETE("/:id", authenticated, postController.DeletePost)

	return &testServer{
		router:       router,
		customerRepo: customerRepo,
		adminRepo:    adminRepo,
		mailer:       mail,
		uploadDir:    uploadDir,
	}
}

// createCustomer inserts a customer directly and returns it with a session token.
func (s *testServer) createCustomer(t *testing.T, email, password string, verified bool) (*model.Customer, string) {
	hash, err := util.HashPassword(password)
	require.NoError(t, err)
	customer := &model.Customer{Email: email, Name: "Test Customer", PasswordHash: hash}
	require.NoError(t, s.customerRepo.Create(customer))
	if verified {
		require.NoError(t, s.customerRepo.MarkVerified(customer.ID))
	}
	token, err := util.GenerateToken(customer.ID, customer.Email, verified, model.RoleCustomer, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return customer, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func (s *testServer) doMultipart(t *testing.T, path, token string, fields map[string]string, file *filePart) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) uploadedFiles(t *testing.T, folder string) []os.DirEntry {
	entries, err := os.ReadDir(s.uploadDir + "/" + folder)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Token   string            `json:"token"`
	URL     string            `json:"url"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// jsonNumber sends a code as a bare JSON number.
func jsonNumber(code string) json.Number {
	return json.Number(code)
}
