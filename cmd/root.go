package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/clinic-sim/sim"
	"github.com/inference-sim/clinic-sim/sim/trace"
)

var (
	configPath string // YAML config file; flags override its values
	logLevel   string // Log verbosity level
	traceLevel string // Transition trace level

	// CLI overrides for sim.Config
	seed              int64   // Seed for all RNG streams
	horizon           float64 // Stop time in virtual time units
	numReceptionists  int     // Receptionists at the front desk
	numOffices        int     // Consultation offices
	queueCapacity     int     // Per-office line capacity
	receptionCapacity int     // Central reception queue capacity
	urgency           float64 // Probability a triaged patient is urgent
	routing           string  // Office routing policy for non-urgent patients
	dropPolicy        string  // What happens to rejected patients
	retryDelay        float64 // Delay before a rejected patient retries
	maxRetries        int     // Retries per patient before discarding
	idGenerator       string  // Patient ID generator
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "clinic-sim",
	Short: "Discrete-event simulator for a multi-stage clinic",
}

// runCmd executes one clinic simulation
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the clinic simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q: valid levels are none, transitions", traceLevel)
		}

		cfg := sim.DefaultConfig()
		if configPath != "" {
			if cfg, err = loadConfig(configPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		applyFlagOverrides(cmd, &cfg)

		startTime := time.Now()
		if err := runClinic(cfg, trace.TraceLevel(traceLevel), os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %s", time.Since(startTime))
	},
}

// applyFlagOverrides copies explicitly set flags onto cfg. Unchanged flags
// never overwrite values from the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg *sim.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("receptionists") {
		cfg.NumReceptionists = numReceptionists
	}
	if flags.Changed("offices") {
		cfg.NumOffices = numOffices
	}
	if flags.Changed("queue-capacity") {
		cfg.QueueCapacity = queueCapacity
	}
	if flags.Changed("reception-capacity") {
		cfg.ReceptionCapacity = receptionCapacity
	}
	if flags.Changed("urgency") {
		cfg.UrgencyProbability = urgency
	}
	if flags.Changed("routing") {
		cfg.Routing = routing
	}
	if flags.Changed("drop-policy") {
		cfg.Drop.Policy = dropPolicy
	}
	if flags.Changed("retry-delay") {
		cfg.Drop.RetryDelay = retryDelay
	}
	if flags.Changed("max-retries") {
		cfg.Drop.MaxRetries = maxRetries
	}
	// retry needs both knobs; fall back to the flag defaults when unset
	if cfg.Drop.Policy == sim.DropRetry {
		if cfg.Drop.RetryDelay == 0 {
			cfg.Drop.RetryDelay = retryDelay
		}
		if cfg.Drop.MaxRetries == 0 {
			cfg.Drop.MaxRetries = maxRetries
		}
	}
	if flags.Changed("id-generator") {
		cfg.IDGenerator = idGenerator
	}
}

// runClinic builds the network, runs it and prints the report to w.
func runClinic(cfg sim.Config, level trace.TraceLevel, w io.Writer) error {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	n, err := sim.NewNetwork(cfg, sim.WithHook(st))
	if err != nil {
		return fmt.Errorf("building clinic: %w", err)
	}
	snap, err := n.Run()
	if err != nil {
		return err
	}
	printSnapshot(w, snap)
	if st.Enabled() {
		printTraceSummary(w, trace.Summarize(st))
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a clinic YAML config; flags override its values")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, transitions)")

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for all random streams")
	runCmd.Flags().Float64Var(&horizon, "horizon", defaults.Horizon, "Simulation horizon (virtual time units)")
	runCmd.Flags().IntVar(&numReceptionists, "receptionists", defaults.NumReceptionists, "Number of receptionists")
	runCmd.Flags().IntVar(&numOffices, "offices", defaults.NumOffices, "Number of consultation offices")
	runCmd.Flags().IntVar(&queueCapacity, "queue-capacity", defaults.QueueCapacity, "Capacity of each office line")
	runCmd.Flags().IntVar(&receptionCapacity, "reception-capacity", defaults.ReceptionCapacity, "Capacity of the reception queue")
	runCmd.Flags().Float64Var(&urgency, "urgency", defaults.UrgencyProbability, "Probability a patient is urgent after triage")
	runCmd.Flags().StringVar(&routing, "routing", defaults.Routing, "Office routing policy (shortest-queue, round-robin, random)")
	runCmd.Flags().StringVar(&dropPolicy, "drop-policy", defaults.Drop.Policy, "Rejected patients: discard or retry")
	runCmd.Flags().Float64Var(&retryDelay, "retry-delay", 5, "Delay before a rejected patient retries (retry policy)")
	runCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Retries per patient before discarding (retry policy)")
	runCmd.Flags().StringVar(&idGenerator, "id-generator", defaults.IDGenerator, "Patient IDs: sequential or xid")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
