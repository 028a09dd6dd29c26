package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify a text once and print the verdict",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.Server.Mode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync()

		classifier, err := newClassifier(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer classifier.Close()

		verdict := classifier.Classify(cmd.Context(), strings.Join(args, " "))

		out, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return fmt.Errorf("encode verdict: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		fmt.Fprintf(cmd.OutOrStdout(), "outcome: %s\n", verdict.Outcome())
		return nil
	},
}
