// Package testdb opens migrated sqlite stores for tests.
package testdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rentctl/internal/config"
	"rentctl/internal/database"
	"rentctl/internal/migration"
	"rentctl/internal/models"
)

// Open returns a fully migrated store backed by a file in t.TempDir.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "rental.db"),
	}
	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = migration.NewMigrator(db).Up()
	require.NoError(t, err)
	return db
}

// Clock returns a fixed time source.
func Clock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// User creates a user with credentials and no roles.
func User(t *testing.T, db *gorm.DB, first, last, email, phone string) *models.User {
	t.Helper()

	auth := &models.UserAuth{Username: email, PasswordHash: "x", Salt: "x"}
	require.NoError(t, db.Create(auth).Error)

	user := &models.User{AuthID: auth.ID, FirstName: first, LastName: last, Email: email, Phone: phone}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Landlord creates a user holding the landlord role.
func Landlord(t *testing.T, db *gorm.DB, first, last, email, phone string) *models.User {
	t.Helper()

	user := User(t, db, first, last, email, phone)
	require.NoError(t, db.Create(&models.Landlord{UserID: user.ID}).Error)
	return user
}

// Property creates a property owned by landlordID. A property listed as not
// for rent is flipped after insert.
func Property(t *testing.T, db *gorm.DB, landlordID uint, p models.Property) *models.Property {
	t.Helper()

	forRent := p.ForRent
	p.LandlordID = landlordID
	p.ForRent = true
	require.NoError(t, db.Create(&p).Error)
	if !forRent {
		require.NoError(t, db.Model(&p).Update("for_rent", false).Error)
	}
	return &p
}

// Broker creates a broker.
func Broker(t *testing.T, db *gorm.DB, first, last string) *models.Broker {
	t.Helper()

	b := &models.Broker{FirstName: first, LastName: last}
	require.NoError(t, db.Create(b).Error)
	return b
}
