package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"worktime/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The JWT
secret is masked.`,
	Example: `
  # Show active configuration
  worktime config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}
		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		printConfig(os.Stdout, cfg)
	},
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "%s: %d\n", config.KeyServerPort, cfg.Server.Port)
	fmt.Fprintf(out, "%s: [%s]\n", config.KeyServerAllowedOrigins, strings.Join(cfg.Server.AllowedOrigins, ", "))
	fmt.Fprintf(out, "%s: %s\n", config.KeyStorageDriver, cfg.Storage.Driver)
	fmt.Fprintf(out, "%s: %s\n", config.KeyStoragePath, cfg.Storage.Path)
	fmt.Fprintf(out, "%s: %s\n", config.KeyStoragePostgresURL, maskPassword(cfg.Storage.PostgresURL))
	fmt.Fprintf(out, "%s: %s\n", config.KeyAuthJWTSecret, strings.Repeat("*", 8))
	fmt.Fprintf(out, "%s: %s\n", config.KeyAuthIssuer, cfg.Auth.Issuer)
	fmt.Fprintf(out, "%s: %s\n", config.KeyAuthTokenTTL, cfg.Auth.TokenTTL)
	fmt.Fprintf(out, "%s: %s\n", config.KeyDisplayLocale, cfg.Locale())
	fmt.Fprintf(out, "%s: %s\n", config.KeyDisplayTimezone, cfg.Location())
	fmt.Fprintf(out, "%s: %t\n", config.KeyLoggingDevelopment, cfg.Logging.Development)
}

// maskPassword hides the password part of a connection URL.
func maskPassword(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 {
		return raw
	}
	credentials := raw[scheme+3 : at]
	colon := strings.Index(credentials, ":")
	if colon < 0 {
		return raw
	}
	return raw[:scheme+3] + credentials[:colon] + ":****" + raw[at:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
