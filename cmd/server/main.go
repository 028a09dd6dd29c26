package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Misogyny Detection API
// @version 1.0
// @description Classifies short texts as misogynistic or not and serves impact statistics.
// @BasePath /

var rootCmd = &cobra.Command{
	Use:   "misogyny-detector",
	Short: "Misogyny detection backend",
	Long:  "HTTP service that classifies texts as misogynistic using phrase overrides and a pretrained classifier.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs/config.yml", "Path to the YAML configuration file")

	rootCmd.AddCommand(classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
