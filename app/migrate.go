package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/daemon"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database and seed the permission catalog",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		gdb, err := db.Open(&cfg)
		if err != nil {
			return err
		}

		if err = db.Migrate(gdb); err != nil {
			return err
		}

		if err = daemon.Seed(cmd.Context(), auth.NewService(gdb), &cfg); err != nil {
			return err
		}

		log.Info().Msg("database migrated")

		return nil
	},
}
