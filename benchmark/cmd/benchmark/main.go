package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvr-ai/go-motion/benchmark"
	"github.com/nvr-ai/go-motion/logger"
	"github.com/nvr-ai/go-motion/motion"
)

func main() {
	var (
		scenarioFile = flag.String("scenarios", "", "Path to a YAML scenario set")
		outputDir    = flag.String("output", "./benchmark_results", "Output directory for results")
		quick        = flag.Bool("quick", false, "Run quick benchmark scenarios")
		resolutions  = flag.Bool("resolutions", false, "Compare frame resolutions")
		density      = flag.Bool("density", false, "Compare scene densities")
		strategy     = flag.String("strategy", string(motion.StrategyComponents), "Strategy for -resolutions")
		timeout      = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	suite := benchmark.NewSuite(*outputDir)
	predefined := &benchmark.PredefinedScenarios{}

	add := func(set *benchmark.ScenarioSet) {
		for _, scenario := range set.Scenarios {
			suite.AddScenario(scenario)
		}
		logger.Info("benchmark", "added %d scenarios from %q", len(set.Scenarios), set.Name)
	}

	if *scenarioFile != "" {
		set, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			logger.Error("benchmark", "load scenarios: %v", err)
			os.Exit(1)
		}
		add(set)
	} else {
		if *quick {
			add(predefined.GetQuickScenarios())
		}
		if *resolutions {
			add(predefined.GetResolutionComparisonScenarios(motion.Strategy(*strategy)))
		}
		if *density {
			add(predefined.GetDensityScenarios(benchmark.CommonResolutions[1]))
		}
		if !*quick && !*resolutions && !*density {
			add(predefined.GetQuickScenarios())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := suite.RunAllScenarios(ctx); err != nil {
		logger.Error("benchmark", "run: %v", err)
		os.Exit(1)
	}
	logger.Info("benchmark", "completed in %v", time.Since(start).Truncate(time.Millisecond))

	var best benchmark.PerformanceMetrics
	for _, result := range suite.GetResults() {
		if result.FramesPerSecond > best.FramesPerSecond {
			best = result
		}
		fmt.Printf("  %-40s %8.1f FPS  mean %-12v p95 %-12v boxes %d\n",
			result.Scenario.Name, result.FramesPerSecond,
			result.MeanLatency.Truncate(time.Microsecond), result.P95Latency.Truncate(time.Microsecond),
			result.BoxCount)
	}
	if best.Scenario.Name != "" {
		fmt.Printf("\nFastest scenario: %s (%.1f FPS)\n", best.Scenario.Name, best.FramesPerSecond)
	}
}

func init() {
	flag.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(os.Stderr, "Measures motion detection latency on synthetic scenes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -quick\n", name)
		fmt.Fprintf(os.Stderr, "  %s -resolutions -strategy contours\n", name)
		fmt.Fprintf(os.Stderr, "  %s -scenarios ./scenarios.yaml -output ./results\n", name)
	}
}
