package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"menuscan/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "menuscan",
	Short: "menuscan - reconstruct menu items from photographed restaurant menus",
	Long: `menuscan turns a photograph of a restaurant menu into a structured list
of (dish name, price) pairs.

An OCR backend (Google Cloud Vision by default) recognizes the text
blocks; the reconstruction engine then groups the blocks into columns,
matches dish names with nearby prices, and parses Japanese numeral
notations including vertical kanji digits and full-width Arabic digits.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("menuscan executed")

		fmt.Println("Welcome to menuscan!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
