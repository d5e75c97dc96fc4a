package commands_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rentctl/internal/commands"
	"rentctl/internal/config"
	"rentctl/internal/database"
	"rentctl/internal/models"
	"rentctl/internal/testdb"
)

func TestShellCmd(t *testing.T) {
	cmd := commands.ShellCmd()
	assert.Equal(t, "shell", cmd.Use)
	assert.Equal(t, "Start the interactive rental menu", cmd.Short)
}

func TestMigrateCmd(t *testing.T) {
	cmd := commands.MigrateCmd()
	assert.Equal(t, "migrate", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status", "history"}, names)
}

func TestUpCmd(t *testing.T) {
	cmd := commands.UpCmd()
	assert.Equal(t, "up", cmd.Use)
	assert.Equal(t, "Apply all pending migrations", cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("dry-run"))
}

func TestDownCmd(t *testing.T) {
	cmd := commands.DownCmd()
	assert.Equal(t, "down", cmd.Use)
	assert.Equal(t, "Revert the last migration", cmd.Short)
}

func TestStatusCmd(t *testing.T) {
	cmd := commands.StatusCmd()
	assert.Equal(t, "status", cmd.Use)
	assert.Equal(t, "Show status of all migrations", cmd.Short)
}

func TestHistoryCmd(t *testing.T) {
	cmd := commands.HistoryCmd()
	assert.Equal(t, "history", cmd.Use)
	assert.Equal(t, "Show migration history", cmd.Short)
}

func TestPropertiesCmd(t *testing.T) {
	cmd := commands.PropertiesCmd()
	assert.Equal(t, "properties", cmd.Use)

	for _, name := range []string{"city", "state", "min-price", "max-price", "min-sqft", "min-rooms"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

// useSQLite points configuration at a fresh sqlite file and returns its path.
func useSQLite(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "rentctl.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("BCRYPT_COST", "4")
	return path
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateLifecycle(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, commands.MigrateCmd(), "", "up", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending migrations:")
	assert.Contains(t, out, "create_rental_schema")

	out, err = execute(t, commands.MigrateCmd(), "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending")
	assert.NotContains(t, out, "Applied")

	out, err = execute(t, commands.MigrateCmd(), "", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully applied migration: create_rental_schema")
	assert.Contains(t, out, "Successfully applied migration: index_active_leases")

	out, err = execute(t, commands.MigrateCmd(), "", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending migrations.")

	out, err = execute(t, commands.MigrateCmd(), "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "index_active_leases")

	out, err = execute(t, commands.MigrateCmd(), "", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully reverted migration: index_active_leases")

	_, err = execute(t, commands.MigrateCmd(), "", "down")
	require.NoError(t, err)

	_, err = execute(t, commands.MigrateCmd(), "", "down")
	assert.EqualError(t, err, "no migrations to revert")
}

func TestMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, commands.MigrateCmd(), "", "status")
	assert.ErrorContains(t, err, "DATABASE_URL not set")
}

func TestPropertiesCmdListsAvailable(t *testing.T) {
	path := useSQLite(t)

	_, err := execute(t, commands.MigrateCmd(), "", "up")
	require.NoError(t, err)

	db, err := database.Open(config.Config{DatabaseDriver: config.DriverSQLite, DatabaseURL: path}, zap.NewNop())
	require.NoError(t, err)
	landlord := testdb.Landlord(t, db, "Lara", "Lord", "lara@example.com", "555-0001")
	testdb.Property(t, db, landlord.ID, models.Property{StreetNumber: "1", StreetName: "Lake Shore Dr", City: "Chicago", State: "IL", Price: 900, RoomAmount: 2, ForRent: true})
	testdb.Property(t, db, landlord.ID, models.Property{StreetNumber: "9", StreetName: "Main St", City: "Peoria", State: "IL", Price: 500, RoomAmount: 1, ForRent: true})
	require.NoError(t, database.Close(db))

	out, err := execute(t, commands.PropertiesCmd(), "", "--city", "Chicago", "--min-price", "-10", "--min-rooms", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Lake Shore Dr")
	assert.NotContains(t, out, "Main St")

	out, err = execute(t, commands.PropertiesCmd(), "", "--max-price", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "No available properties found matching your criteria.")
}

func TestShellCmdMigratesAndExits(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, commands.ShellCmd(), "0\n")
	require.NoError(t, err)
	assert.Contains(t, out, "WELCOME TO RENTAL SYSTEM")
	assert.Contains(t, out, "Goodbye!")

	out, err = execute(t, commands.MigrateCmd(), "", "up", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending migrations.")
}
