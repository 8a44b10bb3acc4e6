package main

import (
	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-crm/internal/infra/database"
)

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica as migrações pendentes e mostra a versão do schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect := c.app.Config.DBDriver
			if err := database.Migrate(c.app.DB, dialect); err != nil {
				return err
			}
			v, err := database.MigrationVersion(c.app.DB, dialect)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, dialect)
			return nil
		},
	}
}
