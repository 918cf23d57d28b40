package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
)

const snapshotJSON = `{
	"portfolio_id": "cli",
	"base_currency": "USD",
	"total_aum": "1000000",
	"positions": [
		{"ticker": "A", "shares": "200", "avg_cost": "100", "market_value": "20000", "currency": "USD"},
		{"ticker": "B", "shares": "100", "avg_cost": "100", "market_value": "10000", "currency": "USD"},
		{"ticker": "C", "shares": "50",  "avg_cost": "100", "market_value": "5000",  "currency": "EUR"}
	],
	"scores": {"A": {"score": 9}, "B": {"score": 6}}
}`

// resetFlags restores every flag to its default between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	rootCmd.SetArgs(args)
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o600))
	return path
}

func TestPlan_Table(t *testing.T) {
	output, err := execute(t, "plan", "--file", writeSnapshot(t))
	require.NoError(t, err)

	assert.Contains(t, output, "Allocation Plan - cli")
	assert.Contains(t, output, "SNIPER")
	assert.Contains(t, output, "20000")
	assert.Contains(t, output, "C: FX rate for EUR missing, assumed 1.0")
}

func TestPlan_JSONWithBudget(t *testing.T) {
	output, err := execute(t, "plan", "--file", writeSnapshot(t), "--budget", "50000", "--json")
	require.NoError(t, err)

	var result contracts.Result
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "50000", result.Plan.MonthlyBudget().String())

	a, ok := result.Plan.Get("A")
	require.True(t, ok)
	assert.Equal(t, "50000", a.OptimalContribution.String())
}

func TestPlan_RequiresOneSource(t *testing.T) {
	_, err := execute(t, "plan")
	assert.Error(t, err)

	_, err = execute(t, "plan", "--file", "x.json", "--portfolio", "main")
	assert.Error(t, err)
}

func TestPlan_InvalidBudget(t *testing.T) {
	_, err := execute(t, "plan", "--file", writeSnapshot(t), "--budget", "-1")
	assert.ErrorContains(t, err, "--budget")
}

func TestGate_Toxic(t *testing.T) {
	output, err := execute(t, "gate", "--ticker", "acme", "--score", "9.5", "--runway", "3")
	require.NoError(t, err)
	assert.Contains(t, output, "ACME")
	assert.Contains(t, output, "LOCKED_TOXIC")
}

func TestGate_MissingSignalsOpen(t *testing.T) {
	output, err := execute(t, "gate", "--ticker", "acme")
	require.NoError(t, err)
	assert.Contains(t, output, "OPEN")
}

func TestGate_InvalidPrice(t *testing.T) {
	_, err := execute(t, "gate", "--ticker", "acme", "--price", "abc")
	assert.Error(t, err)
}

func TestGate_NonFiniteScore(t *testing.T) {
	for _, score := range []string{"NaN", "Inf", "-Inf"} {
		_, err := execute(t, "gate", "--ticker", "acme", "--score="+score)
		assert.Error(t, err, score)
	}
}

func TestProject_RejectsBadReturn(t *testing.T) {
	for _, r := range []string{"NaN", "Inf", "-1", "11"} {
		_, err := execute(t, "project", "--target", "500000", "--monthly", "20000", "--return="+r)
		require.Error(t, err, r)
		assert.Contains(t, err.Error(), "--return")
	}
}

func TestProject(t *testing.T) {
	output, err := execute(t, "project", "--target", "500000", "--monthly", "20000", "--return", "0.15", "--series", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "Months")
	assert.Contains(t, output, "20000.00")
}

func TestProject_Unreachable(t *testing.T) {
	output, err := execute(t, "project", "--target", "500000", "--monthly", "0", "--return", "0")
	require.NoError(t, err)
	assert.Contains(t, output, "not reached")
}

func TestPolicyValidate(t *testing.T) {
	output, err := execute(t, "policy", "validate", "--file", filepath.Join("..", "..", "..", "config", "policy", "conviction_v1.yaml"))
	require.NoError(t, err)
	assert.Contains(t, output, "conviction_v1")
}

func TestPolicyValidate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  policy_id: x\nunknown_field: 1\n"), 0o600))

	_, err := execute(t, "policy", "validate", "--file", path)
	assert.Error(t, err)
}

func TestPolicyShow(t *testing.T) {
	output, err := execute(t, "policy", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "# policy_hash:")
	assert.Contains(t, output, "monthly_contribution")
}
