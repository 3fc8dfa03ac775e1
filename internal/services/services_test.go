package services

import (
	"context"
	"errors"
	"juba-homez/internal/authz"
	"juba-homez/internal/config"
	"juba-homez/internal/models"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "services.db")},
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpiresIn: "1h", Issuer: "juba-homez"},
		Security: config.SecurityConfig{
			BcryptCost:       bcrypt.MinCost,
			MaxFailedLogins:  3,
			LockoutDuration:  "15m",
			PasswordResetTTL: "1h",
		},
		Paths: config.PathsConfig{Uploads: filepath.Join(dir, "uploads")},
	}
}

func openTestDB(t *testing.T, cfg *config.Config) *gorm.DB {
	db, err := models.InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// recordingPublisher keeps every published routing key.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	if p.fail {
		return errors.New("broker unavailable")
	}
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, email, role, status string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Email: email, Role: role, Status: status, Name: role, PasswordHash: string(hash)}
	require.NoError(t, db.Create(u).Error)
	return u
}

func identity(u *models.User) *authz.Identity {
	return &authz.Identity{UserID: u.ID, Role: u.Role}
}

func TestTokenService(t *testing.T) {
	cfg := testConfig(t)
	tokens := NewTokenService(cfg)

	token, expiresAt, err := tokens.Issue(7, models.RoleOwner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleOwner, claims.Role)

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		_, err := tokens.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := testConfig(t)
		other.JWT.Secret = "different"
		_, err := NewTokenService(other).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLoginLockoutExpires(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	auth := NewAuthService(db, cfg, NewTokenService(cfg), NewAuditService(db))
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }
	seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserActive)

	for i := 0; i < 3; i++ {
		_, _, err := auth.Login(ctx, "owner@x.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// the right password does not help while locked
	_, _, err := auth.Login(ctx, "owner@x.com", "password123")
	assert.ErrorIs(t, err, ErrTemporarilyLocked)

	var stored models.User
	require.NoError(t, db.Where("email = ?", "owner@x.com").First(&stored).Error)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)

	now = now.Add(16 * time.Minute)
	user, token, err := auth.Login(ctx, " OWNER@x.com ", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Nil(t, user.LockedUntil)
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	auth := NewAuthService(db, cfg, NewTokenService(cfg), NewAuditService(db))
	seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserActive)

	var compared [][]byte
	auth.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, _, unknown := auth.Login(context.Background(), "nobody@x.com", "password123")
	require.Len(t, compared, 1)
	assert.Equal(t, auth.dummyHash, compared[0])

	_, _, wrong := auth.Login(context.Background(), "owner@x.com", "nope")
	assert.Len(t, compared, 2)
	assert.Equal(t, unknown, wrong)
}

func TestPasswordResetExpiry(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	auth := NewAuthService(db, cfg, NewTokenService(cfg), NewAuditService(db))
	ctx := context.Background()
	seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserActive)

	token, err := auth.ForgotPassword(ctx, "owner@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, auth.ResetPassword(ctx, token, "new-password-1"), ErrResetTokenExpired)

	auth.now = time.Now
	require.NoError(t, auth.ResetPassword(ctx, token, "new-password-1"))
	assert.ErrorIs(t, auth.ResetPassword(ctx, token, "new-password-2"), ErrInvalidResetToken)

	empty, err := auth.ForgotPassword(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateDefaultAdmin(t *testing.T) {
	cfg := testConfig(t)
	cfg.DefaultAdmin = config.DefaultAdminConfig{Email: "Admin@Juba.test", Password: "changeme123", Name: "Admin"}
	db := openTestDB(t, cfg)
	auth := NewAuthService(db, cfg, NewTokenService(cfg), NewAuditService(db))

	admin, err := auth.CreateDefaultAdmin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "admin@juba.test", admin.Email)

	again, err := auth.CreateDefaultAdmin(context.Background())
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestApprovalTransitions(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	publisher := &recordingPublisher{}
	audit := NewAuditService(db)
	approvals := NewApprovalService(db, audit, NewNotificationService(db, publisher))
	ctx := context.Background()

	admin := seedUser(t, db, "admin@x.com", models.RoleAdmin, models.UserActive)
	owner := seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserPending)

	_, err := approvals.Transition(ctx, KindUser, owner.ID, Approve, identity(owner), "")
	assert.ErrorIs(t, err, authz.ErrInsufficientRole)

	_, err = approvals.Transition(ctx, KindUser, owner.ID, Reject, identity(admin), " x ")
	assert.ErrorIs(t, err, ErrInvalidReason)

	for i := 0; i < 2; i++ {
		res, err := approvals.Transition(ctx, KindUser, owner.ID, Approve, identity(admin), "")
		require.NoError(t, err)
		assert.Equal(t, models.UserActive, res.To)
	}

	var entries int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ? AND entity_id = ?", ActionUserApproved, owner.ID).Count(&entries).Error)
	assert.Equal(t, int64(2), entries)
	assert.Equal(t, []string{"notification.approval", "notification.approval"}, publisher.keys)

	_, err = approvals.Transition(ctx, KindProperty, 999, Approve, identity(admin), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectedPropertyCanBeApproved(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	audit := NewAuditService(db)
	approvals := NewApprovalService(db, audit, NewNotificationService(db, nil))
	ctx := context.Background()

	admin := seedUser(t, db, "admin@x.com", models.RoleAdmin, models.UserActive)
	owner := seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserActive)
	property := &models.Property{OwnerID: owner.ID, Title: "Villa", ListingType: models.ListingSale, PropertyType: "house"}
	require.NoError(t, db.Create(property).Error)

	res, err := approvals.Transition(ctx, KindProperty, property.ID, Reject, identity(admin), "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, res.To)

	res, err = approvals.Transition(ctx, KindProperty, property.ID, Approve, identity(admin), "")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, res.From)
	assert.Equal(t, models.ApprovalApproved, res.To)

	var stored models.Property
	require.NoError(t, db.First(&stored, property.ID).Error)
	assert.Empty(t, stored.RejectionReason)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, admin.ID, *stored.ApprovedBy)

	for _, action := range []string{ActionPropertyRejected, ActionPropertyApproved} {
		var n int64
		require.NoError(t, db.Model(&models.AuditLog{}).
			Where("action = ? AND entity_id = ?", action, property.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n, action)
	}

	_, err = approvals.Transition(ctx, KindProperty, property.ID, Suspend, identity(admin), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprovalRollsBackWithAudit(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	approvals := NewApprovalService(db, NewAuditService(db), NewNotificationService(db, nil))
	admin := seedUser(t, db, "admin@x.com", models.RoleAdmin, models.UserActive)
	owner := seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserPending)

	require.NoError(t, db.Migrator().DropTable(&models.AuditLog{}))

	_, err := approvals.Transition(context.Background(), KindUser, owner.ID, Approve, identity(admin), "")
	require.Error(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, owner.ID).Error)
	assert.Equal(t, models.UserPending, stored.Status)
}

func TestNotificationPublishFailureIsDropped(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	publisher := &recordingPublisher{fail: true}
	notifications := NewNotificationService(db, publisher)
	user := seedUser(t, db, "c@x.com", models.RoleCustomer, models.UserActive)

	created, err := notifications.Create(context.Background(), db, []models.Notification{{
		UserID: user.ID, Type: models.NotifyAnnouncement, Title: "Hello", Message: "World",
	}})
	require.NoError(t, err)
	notifications.Publish(context.Background(), created)
	assert.Len(t, publisher.keys, 1)

	unread, err := notifications.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestPhotoJobStateMachine(t *testing.T) {
	cfg := testConfig(t)
	db := openTestDB(t, cfg)
	jobs := NewPhotoJobService(db, NewAuditService(db), NewNotificationService(db, nil))
	ctx := context.Background()

	admin := seedUser(t, db, "admin@x.com", models.RoleAdmin, models.UserActive)
	owner := seedUser(t, db, "owner@x.com", models.RoleOwner, models.UserActive)
	shooter := seedUser(t, db, "shooter@x.com", models.RolePhotographer, models.UserActive)
	property := &models.Property{OwnerID: owner.ID, Title: "Villa", ListingType: models.ListingSale, PropertyType: "house"}
	require.NoError(t, db.Create(property).Error)

	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return now }

	job, err := jobs.Create(ctx, identity(owner), property.ID, PhotoJobInput{Notes: "Exterior"})
	require.NoError(t, err)

	_, err = jobs.Transition(ctx, identity(admin), job.ID, JobAccept, JobChange{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = jobs.Transition(ctx, identity(admin), job.ID, JobAccept, JobChange{PhotographerID: &owner.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	accepted, err := jobs.Transition(ctx, identity(admin), job.ID, JobAccept, JobChange{PhotographerID: &shooter.ID})
	require.NoError(t, err)
	require.NotNil(t, accepted.PhotographerID)
	assert.Equal(t, shooter.ID, *accepted.PhotographerID)

	past := now.Add(-time.Hour)
	_, err = jobs.Transition(ctx, identity(shooter), job.ID, JobSchedule, JobChange{ScheduledAt: &past})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = jobs.Transition(ctx, identity(shooter), job.ID, JobComplete, JobChange{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	at := now.Add(24 * time.Hour)
	_, err = jobs.Transition(ctx, identity(shooter), job.ID, JobSchedule, JobChange{ScheduledAt: &at})
	require.NoError(t, err)

	_, err = jobs.Transition(ctx, identity(shooter), job.ID, JobReject, JobChange{Reason: "Rain"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	done, err := jobs.Transition(ctx, identity(shooter), job.ID, JobComplete, JobChange{})
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	var notes int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", owner.ID).Count(&notes).Error)
	assert.Equal(t, int64(3), notes)
}

func TestReasonValidation(t *testing.T) {
	assert.False(t, ValidReason(""))
	assert.False(t, ValidReason("  ab  "))
	assert.True(t, ValidReason("abc"))
	assert.True(t, ValidReason("ñoñ"))
}
