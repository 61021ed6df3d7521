package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/clinic-sim/sim"
	"github.com/inference-sim/clinic-sim/sim/trace"
)

func constantSpec(v float64) sim.DistSpec {
	return sim.DistSpec{Type: sim.DistConstant, Params: map[string]float64{"value": v}}
}

func TestRunClinic_PrintsReport(t *testing.T) {
	// GIVEN a small deterministic clinic
	cfg := sim.DefaultConfig()
	cfg.Horizon = 60
	cfg.NumOffices = 1
	cfg.Arrival = constantSpec(10)
	cfg.Triage = constantSpec(5)
	cfg.Consultation = constantSpec(20)
	cfg.UrgencyProbability = 0
	var buf bytes.Buffer

	// WHEN run with tracing on
	require.NoError(t, runClinic(cfg, trace.TraceLevelTransitions, &buf))

	// THEN the report and the trace summary reach the writer
	out := buf.String()
	assert.Contains(t, out, "=== Clinic Simulation ===")
	assert.Contains(t, out, "Arrivals             : 6")
	assert.Contains(t, out, "Served               : 2")
	assert.Contains(t, out, "Avg Waiting Time     : 15.00")
	assert.Contains(t, out, "office-1")
	assert.Contains(t, out, "=== Trace Summary ===")
	assert.Contains(t, out, "Patients             : 6")
}

func TestRunClinic_NoTraceSummaryWhenDisabled(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, runClinic(sim.DefaultConfig(), trace.TraceLevelNone, &buf))

	assert.NotContains(t, buf.String(), "Trace Summary")
}

func TestRunClinic_InvalidConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.NumReceptionists = 0

	err := runClinic(cfg, trace.TraceLevelNone, &bytes.Buffer{})

	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
}

func TestApplyFlagOverrides_OnlyChangedFlags(t *testing.T) {
	// GIVEN a config loaded from a file and one explicitly set flag
	flags := runCmd.Flags()
	require.NoError(t, flags.Set("offices", "3"))
	t.Cleanup(func() {
		_ = flags.Set("offices", "5")
		flags.Lookup("offices").Changed = false
	})
	cfg := sim.DefaultConfig()
	cfg.Seed = 7

	// WHEN overrides are applied
	applyFlagOverrides(runCmd, &cfg)

	// THEN the set flag wins and unset flags leave the file values alone
	assert.Equal(t, 3, cfg.NumOffices)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestApplyFlagOverrides_RetryFillsDefaults(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Drop.Policy = sim.DropRetry

	applyFlagOverrides(runCmd, &cfg)

	assert.Equal(t, 5.0, cfg.Drop.RetryDelay)
	assert.Equal(t, 3, cfg.Drop.MaxRetries)
	assert.NoError(t, cfg.Validate())
}
