package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"httpd-scoreboard/lib/configutil"
	"httpd-scoreboard/lib/scoreboard"
	"httpd-scoreboard/lib/serviceutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

type Config struct {
	// default status page to read when no positional argument is given;
	// empty means stdin
	Input string `json:"input"`
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

// readDocument reads the status page named by the first positional argument,
// by config.json5, or from stdin, to completion, and parses it into a
// document tree.
func readDocument(args []string) *goquery.Document {
	input := ""
	if len(args) > 0 {
		input = args[0]
	} else {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}
		input = cfg.Input
	}

	var reader io.Reader = os.Stdin
	if input != "" {
		slog.Debug("reading status page", "path", input)
		file, err := os.Open(input)
		if err != nil {
			serviceutil.Fatal("failed to open status page", err)
		}
		defer file.Close()
		reader = file
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		serviceutil.Fatal("failed to parse html", err)
	}
	return doc
}

// decodeScoreboard runs the whole pipeline up to the decoded worker list.
// Any parse failure terminates the process; for row-level failures the
// offending row's markup is echoed to stderr first.
func decodeScoreboard(ctx context.Context, args []string) []scoreboard.WorkerScore {
	doc := readDocument(args)
	workers, err := scoreboard.Parse(ctx, doc)
	if err != nil {
		var rowErr *scoreboard.RowError
		if errors.As(err, &rowErr) {
			fmt.Fprintf(os.Stderr, "Row: %s\n", rowErr.RowHTML)
		}
		serviceutil.Fatal("failed to parse scoreboard", err)
	}
	return workers
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parses a mod_status page and prints the worker scoreboard as JSON.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workers := decodeScoreboard(cmd.Context(), args)
		status := scoreboard.ServerStatus{Workers: workers}

		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			serviceutil.Fatal("failed to encode server status", err)
		}
		fmt.Println(string(out))
	},
}
