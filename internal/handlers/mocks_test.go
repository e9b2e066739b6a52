package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/config"
	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const testCookieName = "evoting_session"

// =============================================================================
// Mock Services
// =============================================================================

type mockAuthService struct {
	loginFunc          func(ctx context.Context, identifier, password string) (*service.LoginResult, error)
	changePasswordFunc func(ctx context.Context, userID int64, current, next string) error
}

func (m *mockAuthService) Login(ctx context.Context, identifier, password string) (*service.LoginResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, identifier, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, userID, current, next)
	}
	return errors.New("not implemented")
}

type mockRegistrationService struct {
	submitFunc func(ctx context.Context, form service.RegistrationForm, doc *service.Upload) (*service.RegistrationResult, error)
}

func (m *mockRegistrationService) Submit(ctx context.Context, form service.RegistrationForm, doc *service.Upload) (*service.RegistrationResult, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, form, doc)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRegistrationService) PurgeExpired(ctx context.Context) (int, error) {
	return 0, nil
}

type mockVerificationService struct {
	verifyFunc func(ctx context.Context, token string) (*models.User, error)
	resendFunc func(ctx context.Context, userID int64) error
}

func (m *mockVerificationService) Verify(ctx context.Context, token string) (*models.User, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockVerificationService) Resend(ctx context.Context, userID int64) error {
	if m.resendFunc != nil {
		return m.resendFunc(ctx, userID)
	}
	return errors.New("not implemented")
}

type mockApprovalService struct {
	listPendingFunc func(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error)
	getFunc         func(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	approveFunc     func(ctx context.Context, id int64) (*service.ApprovalResult, error)
	rejectFunc      func(ctx context.Context, id int64, reason string) (*service.RejectionResult, error)
}

func (m *mockApprovalService) ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, limit, offset)
	}
	return nil, 0, errors.New("not implemented")
}

func (m *mockApprovalService) Get(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockApprovalService) Approve(ctx context.Context, id int64) (*service.ApprovalResult, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockApprovalService) Reject(ctx context.Context, id int64, reason string) (*service.RejectionResult, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id, reason)
	}
	return nil, errors.New("not implemented")
}

// =============================================================================
// Mock Repositories
// =============================================================================

type mockActivityRepository struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	listErr error
}

func (m *mockActivityRepository) LogAction(_ context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockActivityRepository) ListByUser(_ context.Context, userID int64, limit int) ([]models.ActivityLog, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for _, e := range m.entries {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockActivityRepository) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type mockUserRepository struct {
	findByIDFunc func(ctx context.Context, id int64) (*models.User, error)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	return errors.New("not implemented")
}

func (m *mockUserRepository) MarkVerified(ctx context.Context, id int64) error {
	return errors.New("not implemented")
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

func testCookieConfig() config.CookieConfig {
	return config.CookieConfig{
		Name:     testCookieName,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

func setupSessions(t *testing.T) (service.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return service.NewSessionManager(client, time.Hour), mr
}

// newTestRouter returns a router that resolves sessions the way production does.
func newTestRouter(sessions service.SessionManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoadSession(sessions, testCookieName, zap.NewNop()))
	return router
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return body
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}
	return nil
}
