package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"furiganalyrics/config"
	"furiganalyrics/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}
	cfg := config.Default()

	root := &cobra.Command{
		Use:           "furiganalyrics",
		Short:         "Furigana for Japanese lyrics",
		Long:          "Annotates Japanese lyrics with furigana, offering alternative readings for words that have several.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				c.Log.Level = flags.logLevel
			}
			if cmd.Flags().Changed("log-json") {
				c.Log.JSON = flags.logJSON
			}
			logger.Setup(c.Log.Level, c.Log.JSON)
			*cfg = *c
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "Log as JSON")

	root.AddCommand(
		serveCmd(cfg),
		convertCmd(cfg),
		segmentCmd(),
	)
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
