package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/config"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCheckoutAttemptsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_checkout_attempts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no checkout attempts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS checkout_attempts",
		"total_amount numeric(12,2) NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_checkout_attempts_session_created",
		"DROP TABLE IF EXISTS checkout_attempts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestRunAppliesMigrationsOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	defer sqlDB.Close()

	dialect := migrate.Dialect(config.DBConfig{Driver: config.DBDriverSQLite})
	if err := migrate.Run(context.Background(), sqlDB, dialect, "migrations", "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}
	if !conn.Migrator().HasTable("checkout_attempts") {
		t.Fatal("expected checkout_attempts table after migration")
	}
}

func TestDialect(t *testing.T) {
	if got := migrate.Dialect(config.DBConfig{Driver: "postgres"}); got != "postgres" {
		t.Fatalf("unexpected dialect %q", got)
	}
	if got := migrate.Dialect(config.DBConfig{Driver: "SQLite"}); got != "sqlite3" {
		t.Fatalf("unexpected dialect %q", got)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Coupon Usage")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_coupon_usage.sql") {
		t.Fatalf("unexpected filename %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "  --  "); err == nil {
		t.Fatal("expected error for a name without usable characters")
	}
}

func TestValidateDirRejectsBrokenFiles(t *testing.T) {
	tests := map[string]string{
		"20260301090000_no_down.sql":  "-- +goose Up\nSELECT 1;\n",
		"20260301090000_unclosed.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"20261399000000_bad_ts.sql":   "-- +goose Up\n-- +goose Down\n",
		"checkout.sql":                "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range tests {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		err := migrate.ValidateDir(dir)
		if err == nil || !strings.Contains(err.Error(), name) {
			t.Fatalf("%s: expected validation error naming the file, got %v", name, err)
		}
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	for _, name := range []string{"20260301090000_a.sql", "20260301090000_b.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := migrate.ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestMigrateToVersionRoundTrip(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_version_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	if err := migrate.MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "20260301090000"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if !conn.Migrator().HasTable("checkout_attempts") {
		t.Fatal("expected checkout_attempts after migrating up")
	}
	if err := migrate.MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "0"); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if conn.Migrator().HasTable("checkout_attempts") {
		t.Fatal("expected checkout_attempts dropped after migrating down")
	}
	if err := migrate.MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "latest"); err == nil {
		t.Fatal("expected error for non-numeric version")
	}
}
