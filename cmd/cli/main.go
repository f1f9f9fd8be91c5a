package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/assistant"
	"github.com/dvloznov/finance-assistant/internal/charts"
	"github.com/dvloznov/finance-assistant/internal/config"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/organizze"
	"github.com/dvloznov/finance-assistant/internal/protocol"
	"github.com/dvloznov/finance-assistant/internal/render"
	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk(log)
	case "snapshot":
		runSnapshot(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Assistant CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  ask       Ask the assistant a question about your finances")
	fmt.Println("  snapshot  Print the current financial snapshot as seen by the model")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAsk(log zerolog.Logger) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	chartOut := fs.String("chart-out", "", "write the requested chart PNG to this path")
	fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		log.Fatal().Msg("Error: a question is required, e.g. cli ask \"quanto gastei este mês?\"")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	snap := buildSnapshot(ctx, cfg, log)

	model, err := assistant.New(ctx, assistant.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create assistant")
	}

	reply, err := model.Ask(ctx, question, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("Model call failed")
	}

	fmt.Println(protocol.StripMarkers(reply))

	if kind, ok := protocol.ExtractChartCommand(reply); ok {
		fmt.Printf("\n[chart requested: %s]\n", kind)
		if *chartOut != "" {
			writeChart(kind, snap, *chartOut, log)
		}
	}
	if action, ok := protocol.ExtractActionCommand(reply); ok {
		fmt.Printf("[action signaled: %s]\n", action)
	}
}

func runSnapshot(log zerolog.Logger) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap := buildSnapshot(ctx, cfg, log)

	fmt.Printf("Snapshot for %s/%d\n", snap.MonthLabel, snap.Year)
	fmt.Printf("  Accounts:      %d (total R$ %s)\n", len(snap.Accounts), snap.TotalBalance.StringFixed(2))
	fmt.Printf("  Income:        R$ %s\n", snap.Income.StringFixed(2))
	fmt.Printf("  Expenses:      R$ %s\n", snap.Expenses.StringFixed(2))
	fmt.Printf("  Net:           R$ %s\n", snap.Net.StringFixed(2))
	fmt.Printf("  Transactions:  %d (%d recent)\n", len(snap.All), len(snap.Recent))
	fmt.Printf("  Credit cards:  %d\n", len(snap.CreditCards))
	fmt.Printf("  Budgets:       %d\n", len(snap.Budgets))
	fmt.Printf("  Invoices:      %d\n", len(snap.Invoices))
}

func buildSnapshot(ctx context.Context, cfg *config.Config, log zerolog.Logger) *snapshot.Snapshot {
	ledger, err := organizze.New(organizze.Config{
		BaseURL: cfg.OrganizzeBaseURL,
		Email:   cfg.OrganizzeEmail,
		Token:   cfg.OrganizzeAPIKey,
		Timeout: cfg.RequestTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger client")
	}

	snap, err := snapshot.NewBuilder(ledger, log).Build(ctx, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build snapshot")
	}
	return snap
}

func writeChart(kind protocol.ChartKind, snap *snapshot.Snapshot, path string, log zerolog.Logger) {
	renderer := render.NewImageRenderer()

	var (
		image []byte
		err   error
	)
	switch kind {
	case protocol.ChartPie:
		if data := charts.BuildCategoryBreakdown(snap.All); data != nil {
			image, err = renderer.RenderCategoryBreakdown(data)
		}
	case protocol.ChartBar:
		if data := charts.BuildDailySpending(snap.All); data != nil {
			image, err = renderer.RenderDailySpending(data)
		}
	case protocol.ChartSummary:
		image, err = renderer.RenderMonthSummary(charts.BuildMonthSummary(snap.Summary()))
	case protocol.ChartBudget:
		if data := charts.BuildBudgetProgress(snap.Budgets); data != nil {
			image, err = renderer.RenderBudgetProgress(data)
		}
	case protocol.ChartInvoice:
		if data := charts.BuildInvoiceHistory(snap.Invoices); data != nil {
			image, err = renderer.RenderInvoiceHistory(data)
		}
	case protocol.ChartComparison:
		image, err = renderer.RenderMonthComparison(charts.BuildMonthComparison(snap.Summary(), snap.Previous))
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Chart rendering failed")
	}
	if image == nil {
		fmt.Println("[no data for requested chart]")
		return
	}

	if err := os.WriteFile(path, image, 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write chart file")
	}
	fmt.Printf("[chart written to %s]\n", path)
}
