package migration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func tableExists(t *testing.T, db *gorm.DB, name string) bool {
	var count int64
	err := db.Raw("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", name).Count(&count).Error
	require.NoError(t, err)
	return count == 1
}

func testMigration(version, table string) *Migration {
	return &Migration{
		Version: version,
		Name:    "create_" + table,
		Up: func(db *gorm.DB) error {
			return db.Exec("CREATE TABLE " + table + " (id INTEGER PRIMARY KEY)").Error
		},
		Down: func(db *gorm.DB) error {
			return db.Exec("DROP TABLE " + table).Error
		},
	}
}

func TestMigrator_Up(t *testing.T) {
	db := setupTestDB(t)
	migrator := &Migrator{db: db}
	migrator.Register(testMigration("20240315000002", "second"))
	migrator.Register(testMigration("20240315000001", "first"))

	applied, err := migrator.Up()
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "create_first", applied[0].Name)

	var record MigrationRecord
	err = db.Where("version = ?", "20240315000001").First(&record).Error
	assert.NoError(t, err)
	assert.Equal(t, "create_first", record.Name)
	assert.True(t, tableExists(t, db, "first"))
	assert.True(t, tableExists(t, db, "second"))

	applied, err = migrator.Up()
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_UpRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	migrator := &Migrator{db: db}
	migrator.Register(&Migration{
		Version: "20240315000001",
		Name:    "broken",
		Up: func(db *gorm.DB) error {
			if err := db.Exec("CREATE TABLE half (id INTEGER PRIMARY KEY)").Error; err != nil {
				return err
			}
			return db.Exec("CREATE TABLE half (id INTEGER PRIMARY KEY)").Error
		},
		Down: func(db *gorm.DB) error { return nil },
	})

	_, err := migrator.Up()
	require.Error(t, err)

	pending, err := migrator.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.False(t, tableExists(t, db, "half"))
}

func TestMigrator_Down(t *testing.T) {
	db := setupTestDB(t)
	migrator := &Migrator{db: db}
	migrator.Register(testMigration("20240315000001", "test"))

	_, err := migrator.Up()
	require.NoError(t, err)

	reverted, err := migrator.Down()
	require.NoError(t, err)
	assert.Equal(t, "create_test", reverted.Name)

	var record MigrationRecord
	err = db.Where("version = ?", "20240315000001").First(&record).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.False(t, tableExists(t, db, "test"))

	_, err = migrator.Down()
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMigrator_StatusAndHistory(t *testing.T) {
	db := setupTestDB(t)
	migrator := &Migrator{db: db}
	migrator.Register(testMigration("20240315000001", "one"))

	_, err := migrator.Up()
	require.NoError(t, err)
	migrator.Register(testMigration("20240315000002", "two"))

	statuses, err := migrator.Status()
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)

	history, err := migrator.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "20240315000001", history[0].Version)
}

func TestRentalSchema(t *testing.T) {
	db := setupTestDB(t)
	migrator := NewMigrator(db)

	applied, err := migrator.Up()
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	for _, table := range []string{
		"user_auth", "users", "tenants", "landlords", "us_citizens", "international_students",
		"students", "properties", "neighborhoods", "property_neighborhoods", "leases", "brokers", "broker_tenants",
	} {
		assert.True(t, tableExists(t, db, table), table)
	}

	_, err = migrator.Down()
	require.NoError(t, err)
	_, err = migrator.Down()
	require.NoError(t, err)
	assert.False(t, tableExists(t, db, "leases"))
	assert.False(t, tableExists(t, db, "property_neighborhoods"))
	assert.True(t, tableExists(t, db, "schema_migrations"))
}
