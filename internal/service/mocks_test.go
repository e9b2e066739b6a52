package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret = "this-is-a-test-secret-with-32-bytes!"
	testSite   = "https://vote.example.com"
)

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	findByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	findByIDFunc       func(ctx context.Context, id int64) (*models.User, error)
	createFunc         func(ctx context.Context, user *models.User) error
	markVerifiedFunc   func(ctx context.Context, id int64) error
	updatePasswordFunc func(ctx context.Context, id int64, hash string) error
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) MarkVerified(ctx context.Context, id int64) error {
	if m.markVerifiedFunc != nil {
		return m.markVerifiedFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, id, hash)
	}
	return errors.New("not implemented")
}

// =============================================================================
// Mock RegistrationRepository
// =============================================================================

type mockRegistrationRepository struct {
	identityTakenFunc     func(ctx context.Context, username, email, nationalID string) (bool, error)
	createFunc            func(ctx context.Context, req *models.RegistrationRequest) error
	findByIDFunc          func(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	listPendingFunc       func(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error)
	listCreatedBeforeFunc func(ctx context.Context, before time.Time) ([]models.RegistrationRequest, error)
	approveFunc           func(ctx context.Context, id int64, user *models.User) error
	deleteFunc            func(ctx context.Context, id int64) (*models.RegistrationRequest, error)
}

func (m *mockRegistrationRepository) IdentityTaken(ctx context.Context, username, email, nationalID string) (bool, error) {
	if m.identityTakenFunc != nil {
		return m.identityTakenFunc(ctx, username, email, nationalID)
	}
	return false, nil
}

func (m *mockRegistrationRepository) Create(ctx context.Context, req *models.RegistrationRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return errors.New("not implemented")
}

func (m *mockRegistrationRepository) FindByID(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRegistrationRepository) ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, limit, offset)
	}
	return nil, 0, errors.New("not implemented")
}

func (m *mockRegistrationRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]models.RegistrationRequest, error) {
	if m.listCreatedBeforeFunc != nil {
		return m.listCreatedBeforeFunc(ctx, before)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRegistrationRepository) Approve(ctx context.Context, id int64, user *models.User) error {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, id, user)
	}
	return errors.New("not implemented")
}

func (m *mockRegistrationRepository) Delete(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

// =============================================================================
// Mock Notifier
// =============================================================================

type mockNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *mockNotifier) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockNotifier) last(t *testing.T) notify.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("expected a notification to be sent")
	}
	return m.sent[len(m.sent)-1]
}

// =============================================================================
// Mock DocumentStore
// =============================================================================

type mockDocumentStore struct {
	saved   map[string][]byte
	removed []string
	saveErr error
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{saved: map[string][]byte{}}
}

func (m *mockDocumentStore) Save(_ context.Context, name string, r io.Reader, _ int64) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[name] = data
	return nil
}

func (m *mockDocumentStore) Remove(_ context.Context, name string) error {
	m.removed = append(m.removed, name)
	delete(m.saved, name)
	return nil
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

func newTestTokenService(t *testing.T) TokenService {
	t.Helper()
	tokens, err := NewTokenService(testSecret, 48*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return tokens
}
