package backtest

import (
	"fmt"
	"strings"
)

// FormatComparison renders results as an aligned text table for terminal
// output. Formatting only — the simulation core never calls this.
func FormatComparison(results []Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-18s %12s %12s %10s %9s %8s\n",
		"STRATEGY", "FINAL", "PROFIT", "RETURN%", "RISK%", "SHARPE")
	b.WriteString(strings.Repeat("-", 74))
	b.WriteByte('\n')

	for _, r := range results {
		fmt.Fprintf(&b, "%-18s %12.2f %12.2f %9.2f%% %8.4f %8.3f\n",
			r.Strategy,
			r.FinalValue,
			r.Profit,
			r.TotalReturnPct*100,
			r.RiskPct,
			r.SharpeRatio,
		)
	}
	return b.String()
}
