package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rentctl/internal/commands"
)

func main() {
	_ = godotenv.Load()

	shellCmd := commands.ShellCmd()
	rootCmd := &cobra.Command{
		Use:           "rentctl",
		Short:         "Rental property management from the terminal",
		RunE:          shellCmd.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		shellCmd,
		commands.MigrateCmd(),
		commands.PropertiesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
