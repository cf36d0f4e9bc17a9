package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scrimbot",
	Short: "Discord bot for organising team scrims",
	Long: `scrimbot runs a Discord bot that manages teams, scrim challenges,
results and standings for a guild.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			slog.Info("No .env file loaded", "error", err)
		}
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, registerCmd, sweepCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}
