package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/songquanpeng/model-compare/relay/comparison"
	"github.com/songquanpeng/model-compare/relay/streaming"
)

const missing = "-"

func formatMs(v *int64) string {
	if v == nil {
		return missing
	}
	return streaming.FormatDuration(*v)
}

func formatTPS(v *float64) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%.1f", *v)
}

// renderReport prints one row per slot followed by the failures.
func renderReport(w io.Writer, snap comparison.Snapshot) (failed int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Model", "Status", "TTFT", "CoT", "CoT TPS", "Content TPS", "Total", "Tokens"})
	table.SetAutoWrapText(false)

	var failures []string
	for _, target := range snap.Targets {
		resp, ok := snap.Response(target.SlotId)
		if !ok {
			continue
		}
		sum := resp.Metrics.Summarize()
		table.Append([]string{
			target.Label,
			string(resp.Status),
			formatMs(sum.TTFT),
			formatMs(sum.CotDuration),
			formatTPS(sum.CotTPS),
			formatTPS(sum.ContentTPS),
			formatMs(sum.TotalDuration),
			fmt.Sprintf("%d/%d", resp.Metrics.CotTokens, resp.Metrics.ContentTokens),
		})
		if resp.Status != streaming.StatusComplete {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %s", target.Label, resp.Error))
		}
	}
	table.Render()

	if len(failures) > 0 {
		_, _ = fmt.Fprintf(w, "\nFailures:\n  %s\n", strings.Join(failures, "\n  "))
	}
	return failed
}

// renderAnswers prints the reasoning and answer of every slot.
func renderAnswers(w io.Writer, snap comparison.Snapshot) {
	for _, target := range snap.Targets {
		resp, ok := snap.Response(target.SlotId)
		if !ok || resp.Status != streaming.StatusComplete {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n=== %s ===\n", target.Label)
		if resp.Thinking != "" {
			_, _ = fmt.Fprintf(w, "[thinking]\n%s\n[answer]\n", resp.Thinking)
		}
		_, _ = fmt.Fprintln(w, resp.Content)
	}
}
