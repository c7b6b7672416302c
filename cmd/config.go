package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage worktime configuration file values.",
	Long: `Create, edit and display the worktime configuration file.

The configuration holds:
- server.port / server.allowed_origins
- storage.driver (sqlite|postgres) with storage.path or storage.postgres_url
- auth.jwt_secret / auth.issuer / auth.token_ttl
- display.locale / display.timezone
- logging.development`,
	Example: `
  # Create default config in $HOME/.worktime.yaml
  worktime config create

  # Show active config and source file
  worktime config show

  # Open active config in editor (creates example if missing)
  worktime config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
