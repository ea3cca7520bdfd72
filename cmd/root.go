package cmd

import (
	"log"
	"os"

	"profile-server/config"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "profile-server",
	Short: "Elevation profile service for an editable map rectangle",
	Long: `profile-server keeps an editable rectangle on a map and, every time its bounds
settle, samples elevations along the rectangle's diagonal and redraws an elevation
profile chart.

Configuration is read from config.yaml and PROFILE_SERVER_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("env", "e", config.ENV_DEV, "Environment: dev (mock elevation api, in-memory redis) or prod")
}

// loadConfig resolves the --env flag and loads the configuration for it.
func loadConfig(cmd *cobra.Command) *config.Config {
	env, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(env)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
