// cmd/kiosk-assistant/main.go

// Command kiosk-assistant answers visitor questions at an information kiosk,
// either interactively on the terminal or as a Zeebe job worker.
package main

import (
	"fmt"
	"os"

	"kiosk-dialog/internal/common/config"
	"kiosk-dialog/internal/common/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kiosk-assistant",
	Short: "Rule-based kiosk dialogue assistant",
	Long: `kiosk-assistant selects a reply for each visitor utterance.

Subcommands:
  chat   - talk to the assistant on the terminal
  serve  - run the dialog-reply Zeebe worker with health and metrics endpoints`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config YAML file (default: configs/config.yaml)")
	rootCmd.AddCommand(chatCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// newLogger writes to stderr unless configured otherwise, so stdout stays
// free for the conversation.
func newLogger(cfg *config.Config) logger.Logger {
	output := cfg.Logging.Output
	if output == "" {
		output = "stderr"
	}
	return logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, output)
}
