package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"helios/pkg/helios"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: helios-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version               Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  status                Check helios-server health\n")
		fmt.Fprintf(os.Stderr, "  strategies            List the strategy roster\n")
		fmt.Fprintf(os.Stderr, "  results [strategy]    Show stored backtest results\n")
		fmt.Fprintf(os.Stderr, "  run                   Trigger a backtest run\n")
		fmt.Fprintf(os.Stderr, "\nServer URL comes from HELIOS_SERVER (default http://localhost:8090).\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	base := "http://localhost:8090"
	if v := os.Getenv("HELIOS_SERVER"); v != "" {
		base = v
	}
	client := helios.NewClient(base)
	ctx := context.Background()

	switch os.Args[1] {
	case "version":
		fmt.Printf("helios-cli %s\n", version)

	case "status":
		if err := client.Health(ctx); err != nil {
			fatal(err)
		}
		fmt.Println("ok")

	case "strategies":
		names, err := client.Strategies(ctx)
		if err != nil {
			fatal(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}

	case "results":
		var results []helios.Result
		var err error
		if len(os.Args) > 2 {
			results, err = client.ResultsForStrategy(ctx, os.Args[2], 0)
		} else {
			results, err = client.Results(ctx, 0)
		}
		if err != nil {
			fatal(err)
		}
		for _, r := range results {
			fmt.Printf("%-24s final=%.2f return=%+.2f%% sharpe=%.3f at=%s\n",
				r.Strategy, r.FinalValue, r.TotalReturnPct*100, r.SharpeRatio, r.RunAt)
		}

	case "run":
		outcome, err := client.Run(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Print(outcome.Comparison)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
