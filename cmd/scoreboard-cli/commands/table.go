package commands

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"httpd-scoreboard/lib/scoreboard"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tableCmd)
}

var tableCmd = &cobra.Command{
	Use:   "table [file]",
	Short: "Renders the worker scoreboard as a human-readable table.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		workers := decodeScoreboard(cmd.Context(), args)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Gen", "PID", "Status", "Acc", "CPU", "SS", "Req", "Dur",
			"Conn", "Child", "Slot", "Client", "Protocol", "VHost", "Request",
		})
		for _, w := range workers {
			pid := "-"
			if w.Pid != nil {
				pid = strconv.FormatInt(int64(*w.Pid), 10)
			}
			acc := fmt.Sprintf(
				"%d/%d/%d",
				w.AccessCounts.ConnectionScope,
				w.AccessCounts.ChildScope,
				w.AccessCounts.SlotScope,
			)
			t.AppendRow(table.Row{
				w.Generation, pid, w.Status.String(), acc,
				w.CPUSeconds, w.SecondsSinceLastUse, w.RequestTimeMs, w.DurationMs,
				w.ConnKiB, w.ChildMiB, w.SlotMiB,
				w.Client, w.Protocol, w.VirtualHost, w.RequestLine,
			})
		}
		t.Render()

		counts := scoreboard.CountByStatus(workers)
		statuses := make([]scoreboard.WorkerStatus, 0, len(counts))
		for status := range counts {
			statuses = append(statuses, status)
		}
		sort.Slice(statuses, func(i, j int) bool {
			return statuses[i] < statuses[j]
		})
		summary := ""
		for _, status := range statuses {
			if summary != "" {
				summary += " "
			}
			summary += fmt.Sprintf("%s=%d", status, counts[status])
		}
		fmt.Printf("%d workers: %s\n", len(workers), summary)
	},
}
