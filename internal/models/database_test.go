package models

import (
	"juba-homez/internal/config"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Type:   "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "models.db")},
		},
	}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.MySQLConfig{
		Host:     "db",
		Port:     3306,
		Username: "juba",
		Password: "secret",
		Database: "juba_homez",
		Charset:  "utf8mb4",
	})
	assert.Contains(t, dsn, "juba:secret@tcp(db:3306)/juba_homez")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestInitDBRejectsUnknownType(t *testing.T) {
	_, err := InitDB(&config.Config{Database: config.DatabaseConfig{Type: "oracle"}})
	assert.Error(t, err)
}

func TestAuditLogIsAppendOnly(t *testing.T) {
	db := openTestDB(t)

	entry := &AuditLog{Action: "USER_APPROVED", EntityType: EntityUser, EntityID: 7, Meta: JSONMap{"to": "active"}}
	require.NoError(t, db.Create(entry).Error)

	err := db.Model(entry).Update("action", "USER_REJECTED").Error
	assert.ErrorIs(t, err, ErrAuditImmutable)

	err = db.Delete(entry).Error
	assert.ErrorIs(t, err, ErrAuditImmutable)

	var stored AuditLog
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, "USER_APPROVED", stored.Action)
	assert.Equal(t, "active", stored.Meta["to"])
}

func TestPropertySoftDelete(t *testing.T) {
	db := openTestDB(t)

	p := &Property{OwnerID: 1, Title: "Villa", ListingType: ListingSale, PropertyType: "house", Price: 10, ApprovalStatus: ApprovalApproved}
	require.NoError(t, db.Create(p).Error)
	assert.True(t, p.IsPublic())

	require.NoError(t, db.Delete(p).Error)

	var count int64
	db.Model(&Property{}).Count(&count)
	assert.Zero(t, count)

	var deleted Property
	require.NoError(t, db.Unscoped().First(&deleted, p.ID).Error)
	assert.False(t, deleted.IsPublic())
}

func TestPropertyManagedBy(t *testing.T) {
	broker := uint(9)
	p := &Property{OwnerID: 3, BrokerID: &broker}
	assert.True(t, p.ManagedBy(3))
	assert.True(t, p.ManagedBy(9))
	assert.False(t, p.ManagedBy(4))
}

func TestUserIsLocked(t *testing.T) {
	now := time.Now()
	u := &User{}
	assert.False(t, u.IsLocked(now))

	until := now.Add(time.Minute)
	u.LockedUntil = &until
	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(now.Add(2*time.Minute)))
}

func TestStringArrayRoundTrip(t *testing.T) {
	db := openTestDB(t)

	a := &Announcement{Title: "Hello", Message: "World", Audience: StringArray{RoleBroker, RoleOwner}, CreatedBy: 1}
	require.NoError(t, db.Create(a).Error)

	var got Announcement
	require.NoError(t, db.First(&got, a.ID).Error)
	assert.Equal(t, StringArray{RoleBroker, RoleOwner}, got.Audience)
	assert.True(t, got.Audience.Contains(RoleOwner))
	assert.False(t, got.Audience.Contains(RoleAdmin))
}
