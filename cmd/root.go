// cmd/root.go
package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/latencylab/latencylab/engine"
	"github.com/latencylab/latencylab/sim"
)

var (
	modelPath      string
	runs           int
	seed           int64
	maxTasksPerRun int
	logLevel       string
	trace          bool
	configPath     string
)

var rootCmd = &cobra.Command{
	Use:   "latencylab",
	Short: "Deterministic discrete-event latency simulator",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a model and print its aggregated latency summary",
	Run: func(cmd *cobra.Command, args []string) {
		defaults, err := loadRunDefaults(configPath)
		if err != nil {
			logrus.Fatalf("reading config: %v", err)
		}
		applyRunDefaults(cmd.Flags(), defaults)

		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if modelPath == "" {
			logrus.Fatal("--model is required (directly or via --config)")
		}

		raw, err := os.ReadFile(modelPath)
		if err != nil {
			logrus.Fatalf("reading model file: %v", err)
		}

		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			logrus.Fatalf("parsing model file: %v", err)
		}

		model, err := sim.Parse(obj)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("simulating %s: version=%d runs=%d seed=%d", modelPath, model.Version, runs, seed)

		results, summary, instances, err := engine.Run(model, uint64(seed), runs, maxTasksPerRun, trace)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		output := map[string]any{"summary": summary, "runs": results}
		if trace {
			output["trace"] = instances
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output); err != nil {
			logrus.Fatalf("writing output: %v", err)
		}

		logrus.Info("simulation complete")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&modelPath, "model", "", "Path to a model JSON file (required)")
	runCmd.Flags().IntVar(&runs, "runs", 1, "Number of runs to simulate")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Base seed for run derivation")
	runCmd.Flags().IntVar(&maxTasksPerRun, "max-tasks", 100000, "Maximum tasks started per run before the run is marked failed")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "Include the full per-instance trace alongside the aggregated summary")
	runCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML file of run defaults (flags on the command line win)")

	rootCmd.AddCommand(runCmd)
}
