package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"RiskGate/internal/di"
	"RiskGate/internal/domain/models"
	domsvc "RiskGate/internal/domain/service"
	internalrepo "RiskGate/internal/repository"
	"RiskGate/internal/services/pressures"
	"RiskGate/internal/usecase"
	"RiskGate/pkg/config"
	applogger "RiskGate/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "", "symbol to analyze (required)")
	output := flag.String("output", "pretty", "output format: json or pretty")
	synthetic := flag.Bool("synthetic", false, "use the synthetic detector instead of market data")
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "riskcli: -symbol is required")
		os.Exit(1)
	}
	if *output != "json" && *output != "pretty" {
		fmt.Fprintln(os.Stderr, "riskcli: -output must be json or pretty")
		os.Exit(1)
	}

	var cfg *config.Config
	if !*synthetic {
		var err error
		cfg, err = config.LoadWithEnv(*configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}

	l, err := applogger.New(&applogger.Config{Level: "warn", Format: "console", Output: "stderr"})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analysis, err := runOnce(ctx, cfg, l, *symbol, *synthetic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riskcli: %v\n", err)
		os.Exit(1)
	}

	if *output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Fprintf(os.Stderr, "riskcli: encode: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printPretty(analysis)
}

// runOnce executes a single pipeline pass with no publisher and an
// in-process state store.
func runOnce(ctx context.Context, cfg *config.Config, l *applogger.Logger, symbol string, synthetic bool) (models.Analysis, error) {
	var detectors []domsvc.PressureDetector
	var pipeline *usecase.RiskPipeline
	if synthetic {
		detectors = []domsvc.PressureDetector{pressures.NewSyntheticDetector()}
		pipeline = usecase.NewRiskPipeline(
			internalrepo.NewEmptyBarStore(),
			detectors,
			internalrepo.NewMemoryStateStore(),
			nil,
			usecase.NopMetrics{},
			l,
		)
	} else {
		chClient, err := di.ProvideClickHouseClient(cfg)
		if err != nil {
			return models.Analysis{}, err
		}
		defer chClient.Close()

		detectors = di.ProvideDetectors()
		pipeline = usecase.NewRiskPipeline(
			di.ProvideBarStore(chClient, cfg, l),
			detectors,
			di.ProvideStateStore(cfg),
			nil,
			usecase.NopMetrics{},
			l,
		)
	}
	return pipeline.Run(ctx, symbol)
}

func printPretty(a models.Analysis) {
	fmt.Printf("Symbol:      %s\n", a.Symbol)
	fmt.Printf("Run at:      %s\n", a.RunAt.Format(time.RFC3339))
	fmt.Printf("State:       %s\n", a.RiskState.DominantState)
	fmt.Printf("Instability: %.4f\n", a.RiskState.InstabilityScore)
	fmt.Printf("Ambiguity:   %.4f\n", a.RiskState.Ambiguity)
	fmt.Printf("Confidence:  %.4f\n", a.RiskState.Confidence)
	if a.RiskState.DirectionalBias != "" {
		fmt.Printf("Bias:        %s\n", a.RiskState.DirectionalBias)
	}

	fmt.Printf("\nPressures (%d):\n", len(a.Pressures))
	for _, p := range a.Pressures {
		fmt.Printf("  %-28s %-9s mag=%.3f acc=%+.3f conf=%.3f\n",
			p.ID, p.Directionality, p.Magnitude, p.Acceleration, p.Confidence)
	}

	fmt.Printf("\nInteractions (%d):\n", len(a.Interactions))
	for _, ix := range a.Interactions {
		fmt.Printf("  %-14s %s  contrib=%.3f conf=%.3f\n",
			ix.Type, strings.Join(ix.PressureIDs, " x "), ix.InstabilityContribution, ix.Confidence)
	}

	g := a.BehaviorGate
	fmt.Printf("\nGate %s (until %s):\n", g.ID, g.EnforcedUntil.Format(time.RFC3339))
	fmt.Printf("  allowed:    %s\n", joinBehaviors(g.AllowedBehaviors))
	fmt.Printf("  forbidden:  %s\n", joinBehaviors(g.ForbiddenBehaviors))
	fmt.Printf("  aggressiveness limit: %.3f\n", g.AggressivenessLimit)
	fmt.Printf("  %s\n", g.Explanation)
}

func joinBehaviors(bs []models.BehaviorType) string {
	if len(bs) == 0 {
		return "(none)"
	}
	ss := make([]string, len(bs))
	for i, b := range bs {
		ss[i] = string(b)
	}
	return strings.Join(ss, ", ")
}
