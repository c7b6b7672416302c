/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"worktime/config"
	"worktime/internal/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "worktime",
	Short: "Track working time and assign tasks across users.",
	Long: `
**********************************************
*               WORKTIME                     *
**********************************************

Users record time entries for their day; administrators assign tasks and
review everybody's worklogs. All instants are stored in UTC and shown in the
viewer's timezone.

The JSON API is started with "serve". The remaining commands administer users,
issue bearer tokens, import spreadsheets and export monthly worklogs.
`,
	Example: `
  # Create configuration file
  worktime config create

  # Provision an administrator and issue a token
  worktime user add --name "Ada Admin" --email ada@example.com --role ADMIN
  worktime token --user ada@example.com

  # Start the API
  worktime serve --port 8080

  # Import a spreadsheet for a user
  worktime import -i ./august.xlsx --user alice@example.com --timezone Europe/Berlin

  # Export the daily summary of all users for August 2025
  worktime export --all --year 2025 --month 8 --mode daily --output ./august.xlsx
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(viper.GetBool(config.KeyLoggingDevelopment))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.worktime.yaml, then ./.worktime.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".worktime")
	}

	// WORKTIME_AUTH_JWT_SECRET overrides auth.jwt_secret.
	viper.SetEnvPrefix("worktime")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: worktime config create")
	}
}
