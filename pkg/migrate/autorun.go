package migrate

import (
	"context"
	"fmt"

	"github.com/grocerrypoint/grocerrypoint-backend/pkg/config"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/db"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

// MaybeRunDev brings the journal schema up to date on boot. It only runs in
// dev with GROCERRYPOINT_AUTO_MIGRATE set; other environments migrate through
// cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}
	if err := ValidateDir(DefaultDir); err != nil {
		return fmt.Errorf("invalid migrations: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	dialect := Dialect(cfg.DB)
	if err := Run(ctx, sqlDB, dialect, DefaultDir, "up"); err != nil {
		return err
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"dialect":        dialect,
		"schema_version": version,
	}), "migrate.autorun.applied")
	return nil
}
