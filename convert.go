package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"furiganalyrics/client"
	"furiganalyrics/config"
	"furiganalyrics/logger"
	"furiganalyrics/model"
	"furiganalyrics/observe"
	"furiganalyrics/render"
)

type convertFlags struct {
	remote   string
	format   string
	katakana bool
	title    string
	dumpDir  string
}

func convertCmd(cfg *config.Config) *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Annotate lyrics from a file or stdin",
		Long: "Annotates lyrics read from a file, or stdin when no file is given. " +
			"The bundled backend runs in-process unless --remote names a running server.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch flags.format {
			case "text", "html", "json":
			default:
				return fmt.Errorf("unknown format %q: want text, html or json", flags.format)
			}

			lyrics, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var backend client.Backend
			if flags.remote != "" {
				backend = client.New(client.Options{
					BaseURL: flags.remote,
					Timeout: cfg.Client.Timeout,
					Retries: cfg.Client.Retries,
				})
			} else {
				a, _, err := newAnnotator(cfg, observe.DefaultMetrics())
				if err != nil {
					return err
				}
				backend = a
			}

			lines, err := client.NewConverter(backend).Convert(cmd.Context(), lyrics, flags.katakana)
			if err != nil {
				return err
			}
			if flags.dumpDir != "" {
				if err := dump(flags.dumpDir, model.Request{Lyrics: lyrics, Katakana: flags.katakana}, lines); err != nil {
					log.Warn("failed to write dump", "dir", flags.dumpDir, "err", err)
				}
			}
			return writeLines(cmd.OutOrStdout(), lines, flags)
		},
	}
	cmd.Flags().StringVar(&flags.remote, "remote", "", "Base URL of a running backend, e.g. http://127.0.0.1:5000")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text, html or json")
	cmd.Flags().BoolVar(&flags.katakana, "katakana", true, "Show hiragana readings over katakana words")
	cmd.Flags().StringVar(&flags.title, "title", "", "Page title for html output")
	cmd.Flags().StringVar(&flags.dumpDir, "dump-dir", "", "Write the request and response as JSON into this directory")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func dump(dir string, req model.Request, lines []model.Line) error {
	if err := logger.InitLogs(dir); err != nil {
		return err
	}
	id := time.Now().UTC().Format("20060102T150405")
	if err := logger.LogJSON(dir, id+"_request", req); err != nil {
		return err
	}
	return logger.LogJSON(dir, id+"_lines", lines)
}

func writeLines(w io.Writer, lines []model.Line, flags *convertFlags) error {
	if flags.format == "json" {
		if lines == nil {
			lines = []model.Line{}
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}

	doc := render.New(render.Options{})
	doc.Replace(lines)
	if flags.format == "html" {
		return doc.HTML(w, flags.title)
	}
	_, err := fmt.Fprintln(w, doc.Text())
	return err
}
