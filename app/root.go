// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ekklesia-api",
	Short: "EkklesiaSoft API serves the church administration backend",
	Long: `EkklesiaSoft API serves the church administration backend:
tenants (churches), their users, roles and permissions, with every
tenant's data kept apart from the others.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
