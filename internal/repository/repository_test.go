package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "portal.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newRequest(username, email, nationalID string) *models.RegistrationRequest {
	return &models.RegistrationRequest{
		Username:             username,
		Email:                email,
		FullName:             "Jane Doe",
		Phone:                "+15551234567",
		Address:              "1 Main St",
		DateOfBirth:          time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:               "Female",
		NationalID:           nationalID,
		VerificationDocument: "1700000000_abc_id.pdf",
	}
}

func newVoter(username, email, nationalID string) *models.User {
	nid := nationalID
	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleVoter,
		FullName:     "John Roe",
		NationalID:   &nid,
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// =============================================================================
// UserRepository Tests
// =============================================================================

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newVoter("Voter01", "voter01@example.com", "NID-1")
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byName, err := repo.FindByUsername(ctx, "voter01")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "VOTER01@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Voter01", byID.Username)

	assert.Equal(t, int64(3), countRows(t, db, &models.IdentityClaim{}))
}

func TestUserRepository_FindNotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.FindByUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUserRepository_CreateDuplicateRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newVoter("voter01", "a@example.com", "NID-1")))

	err := repo.Create(ctx, newVoter("voter02", "b@example.com", "nid-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
}

func TestUserRepository_MarkVerifiedAndUpdatePassword(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := newVoter("voter01", "a@example.com", "NID-1")
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.MarkVerified(ctx, user.ID))
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$2a$10$newhash"))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.AuthVerified)
	assert.Equal(t, "$2a$10$newhash", got.PasswordHash)

	err = repo.UpdatePassword(ctx, 999, "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

// =============================================================================
// RegistrationRepository Tests
// =============================================================================

func TestRegistrationRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	req := newRequest("applicant", "applicant@example.com", "NID-9")
	require.NoError(t, repo.Create(ctx, req))
	require.NotZero(t, req.ID)

	got, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "applicant", got.Username)
	assert.Equal(t, 1990, got.DateOfBirth.Year())

	assert.Equal(t, int64(1), countRows(t, db, &models.RegistrationRequest{}))
	assert.Equal(t, int64(3), countRows(t, db, &models.IdentityClaim{}))
}

func TestRegistrationRepository_IdentityTaken(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newVoter("voter01", "voter01@example.com", "NID-1")))
	require.NoError(t, repo.Create(ctx, newRequest("applicant", "applicant@example.com", "NID-2")))

	tests := []struct {
		name       string
		username   string
		email      string
		nationalID string
		want       bool
	}{
		{name: "all fresh", username: "fresh", email: "fresh@example.com", nationalID: "NID-3", want: false},
		{name: "username of user", username: "VOTER01", email: "fresh@example.com", nationalID: "NID-3", want: true},
		{name: "email of user", username: "fresh", email: "voter01@example.com", nationalID: "NID-3", want: true},
		{name: "national id of user", username: "fresh", email: "fresh@example.com", nationalID: "nid-1", want: true},
		{name: "username of request", username: "applicant", email: "fresh@example.com", nationalID: "NID-3", want: true},
		{name: "email of request", username: "fresh", email: "Applicant@Example.com", nationalID: "NID-3", want: true},
		{name: "national id of request", username: "fresh", email: "fresh@example.com", nationalID: "NID-2", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.IdentityTaken(ctx, tt.username, tt.email, tt.nationalID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistrationRepository_IdentityTaken_LegacyRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)

	// Inserted without claims, as a seed script would
	legacy := newVoter("legacy", "legacy@example.com", "NID-L")
	require.NoError(t, db.Create(legacy).Error)

	taken, err := repo.IdentityTaken(context.Background(), "other", "legacy@example.com", "NID-X")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestRegistrationRepository_CreateDuplicateAcrossTables(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, newVoter("voter01", "voter01@example.com", "NID-1")))

	// Skips the pre-check, as a racing request would
	err := repo.Create(ctx, newRequest("applicant", "voter01@example.com", "NID-2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, int64(0), countRows(t, db, &models.RegistrationRequest{}))
}

func TestRegistrationRepository_ListPending(t *testing.T) {
	repo := NewRegistrationRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRequest("a1", "a1@example.com", "N1")))
	require.NoError(t, repo.Create(ctx, newRequest("a2", "a2@example.com", "N2")))
	require.NoError(t, repo.Create(ctx, newRequest("a3", "a3@example.com", "N3")))

	page, total, err := repo.ListPending(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "a1", page[0].Username)

	page, _, err = repo.ListPending(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a3", page[0].Username)
}

func TestRegistrationRepository_ListCreatedBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	old := newRequest("old", "old@example.com", "N1")
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, newRequest("new", "new@example.com", "N2")))

	expired, err := repo.ListCreatedBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].Username)
}

func TestRegistrationRepository_Approve(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	req := newRequest("applicant", "applicant@example.com", "NID-9")
	require.NoError(t, repo.Create(ctx, req))

	user := newVoter(req.Username, req.Email, req.NationalID)
	require.NoError(t, repo.Approve(ctx, req.ID, user))
	require.NotZero(t, user.ID)

	_, err := repo.FindByID(ctx, req.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	var claims []models.IdentityClaim
	require.NoError(t, db.Find(&claims).Error)
	require.Len(t, claims, 3)
	for _, c := range claims {
		assert.Equal(t, models.OwnerUser, c.OwnerType)
		assert.Equal(t, user.ID, c.OwnerID)
	}

	// The identity stays reserved after approval
	taken, err := repo.IdentityTaken(ctx, "applicant", "x@example.com", "X")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestRegistrationRepository_ApproveMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)

	err := repo.Approve(context.Background(), 42, newVoter("x", "x@example.com", "X"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int64(0), countRows(t, db, &models.User{}))
}

func TestRegistrationRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	req := newRequest("applicant", "applicant@example.com", "NID-9")
	require.NoError(t, repo.Create(ctx, req))

	deleted, err := repo.Delete(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.VerificationDocument, deleted.VerificationDocument)
	assert.Equal(t, int64(0), countRows(t, db, &models.IdentityClaim{}))

	// The identity is free again
	require.NoError(t, repo.Create(ctx, newRequest("applicant", "applicant@example.com", "NID-9")))

	_, err = repo.Delete(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// =============================================================================
// ActivityLogRepository Tests
// =============================================================================

func TestActivityLogRepository(t *testing.T) {
	repo := NewActivityLogRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.LogAction(ctx, &models.ActivityLog{UserID: 5, Action: models.ActionLoginSuccess}))
	require.NoError(t, repo.LogAction(ctx, &models.ActivityLog{UserID: 5, Action: models.ActionLogout}))
	require.NoError(t, repo.LogAction(ctx, &models.ActivityLog{UserID: 0, Action: models.ActionRegistrationRequest}))

	entries, err := repo.ListByUser(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionLogout, entries[0].Action)
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.Equal(t, ErrNotFound, translate(gorm.ErrRecordNotFound))
	assert.Equal(t, ErrDuplicate, translate(gorm.ErrDuplicatedKey))
	assert.Equal(t, ErrDuplicate, translate(errors.New(`ERROR: duplicate key value violates unique constraint "idx"`)))
	other := errors.New("connection refused")
	assert.Equal(t, other, translate(other))
}
