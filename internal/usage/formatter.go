package usage

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

// Formatter renders ledger summaries for the CLI.
type Formatter struct {
	format string
}

func NewFormatter(format string) *Formatter {
	return &Formatter{format: format}
}

// FormatSummary renders a summary as text or JSON.
func (f *Formatter) FormatSummary(summary Summary) (string, error) {
	if f.format == "json" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal summary: %w", err)
		}
		return string(data), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Usage since %s\n", summary.Since.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Total: %d calls, %d in / %d out tokens, $%.4f\n\n",
		summary.TotalCalls, summary.InputTokens, summary.OutputTokens, summary.TotalCost))

	if len(summary.Operations) == 0 {
		sb.WriteString("No model calls recorded.\n")
		return sb.String(), nil
	}

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tCALLS\tIN\tOUT\tCOST\tAVG LATENCY")
	for _, op := range summary.Operations {
		avg := time.Duration(0)
		if op.Calls > 0 {
			avg = op.TotalLatency / time.Duration(op.Calls)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t$%.4f\t%s\n",
			op.Operation, op.Calls, op.InputTokens, op.OutputTokens, op.TotalCost, avg.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}

	return sb.String(), nil
}
