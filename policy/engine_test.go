package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyAllows(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(context.Background(), map[string]interface{}{
		"client_id":    "c1",
		"total_cents":  50000,
		"entry_count":  1,
		"invoice_type": "hourly",
	})
	require.NoError(t, err)
	assert.Equal(t, "allow", decision)
}

func TestDefaultPolicyBlocksEmptyInvoice(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(context.Background(), map[string]interface{}{
		"client_id":   "c1",
		"total_cents": 0,
		"entry_count": 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)
}

func TestDefaultPolicyBlocksNegativeTotal(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(context.Background(), map[string]interface{}{
		"client_id":   "c1",
		"total_cents": -100,
		"entry_count": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)
}

func TestCustomPolicyCapsTotal(t *testing.T) {
	custom := `
package billing_policy

default decision = "allow"

decision = "block" {
	input.total_cents > 1000000
}
`
	engine, err := NewEngine(context.Background(), custom)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(context.Background(), map[string]interface{}{
		"total_cents": 2000000,
		"entry_count": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)
}

func TestBrokenPolicyFailsToPrepare(t *testing.T) {
	_, err := NewEngine(context.Background(), "not rego at all {")
	assert.Error(t, err)
}
