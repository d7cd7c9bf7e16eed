package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/llm"
)

var guidelinesCmd = &cobra.Command{
	Use:   "guidelines",
	Short: "Print the active review guideline set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Read(viper.GetViper())
		if err != nil {
			return err
		}

		var set *llm.GuidelineSet
		if cfg.Review.GuidelinesFile != "" {
			set, err = llm.LoadGuidelines(cfg.Review.GuidelinesFile)
		} else {
			set, err = llm.DefaultGuidelines()
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		titleColor.Fprintf(out, "%s guidelines (version %d)\n", set.Language, set.Version)
		if cfg.Review.GuidelinesFile != "" {
			dimColor.Fprintf(out, "   Source: %s\n", cfg.Review.GuidelinesFile)
		}
		fmt.Fprintf(out, "\n%s\n\n", set.Preamble)
		for i, g := range set.Guidelines {
			labelColor.Fprintf(out, "%2d. ", i+1)
			fmt.Fprintln(out, g)
		}
		if set.Closing != "" {
			fmt.Fprintf(out, "\n%s\n", set.Closing)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(guidelinesCmd)
}
