package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "review-cli",
	Short: "review-cli runs repository reviews from the command line.",
	Long: `A CLI for the review-bot service. It runs the same review pipeline as the
HTTP server against a repository URL and prints the feedback to the terminal.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./config.yaml or ./config/config.yaml)")
}

// initConfig points viper at an explicit config file when one was given.
// Environment overrides (RB_*) are applied by config.Load.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
}
