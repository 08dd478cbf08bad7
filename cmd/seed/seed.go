package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/paularlott/cli"

	"github.com/martinsuchenak/ipamd/internal/config"
	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/seed"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Usage:       "Import seed data from a YAML file",
		Description: "Load regions, sites, VRFs, prefixes and other objects from a YAML file into the database",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()

			store, err := storage.NewSQLiteStorage(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			path := cmd.GetStringArg("file")
			log.Info("Importing seed data", "file", path, "data_dir", cfg.DataDir)

			importer := seed.NewImporter(store, generateID)
			if err := importer.Load(path); err != nil {
				return fmt.Errorf("seed import failed: %w", err)
			}
			return nil
		},
	}
}
