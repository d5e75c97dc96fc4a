package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rentctl/internal/migration"
	"rentctl/internal/shell"
)

func ShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive rental menu",
		Long:  "Start the interactive rental menu. Pending migrations are applied first unless AUTO_MIGRATE is false.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getDB()
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.AutoMigrate {
				applied, err := migration.NewMigrator(rt.db).Up()
				if err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				for _, m := range applied {
					rt.logger.Info("migration applied", zap.String("version", m.Version), zap.String("name", m.Name))
				}
			}

			return shell.New(cmd.InOrStdin(), cmd.OutOrStdout(), rt.services(), rt.logger).Run(cmd.Context())
		},
	}
}
