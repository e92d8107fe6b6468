package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Rorical/tunneldesk/internal/app"
	"github.com/Rorical/tunneldesk/internal/config"
	"github.com/Rorical/tunneldesk/pkg/logging"
)

const logFileName = "tunneldesk.log"

var rootCmd = &cobra.Command{
	Use:   "tunneldesk",
	Short: "Terminal client for a local tunnel backend",
	Long: `TunnelDesk exposes local web servers, directories and WebDAV shares
through a tunnel backend, and shows their state and logs in the terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := runApp(cfg); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

// runApp starts the TUI against the active profile of cfg. Logs go to a file
// next to the config because the TUI owns the terminal.
func runApp(cfg *config.Config) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}
	if err := logging.InitFile(logging.ParseLevel(cfg.LogLevel), filepath.Join(dir, logFileName)); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logging.Close()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}
	defer application.Stop()

	return application.Start()
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}
