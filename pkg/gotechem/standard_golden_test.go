package gotechem

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/d21d3q/gotechem/internal/testutil"
)

func TestStandardGolden(t *testing.T) {
	hexStr := testutil.LoadHex(t, "standard/water_7a.hex")
	result, err := AnalyzeHexWithOptions(context.Background(), hexStr, AnalyzeOptions{RSSI: 10})
	require.NoError(t, err)
	require.Equal(t, "standard", result.Driver)

	var expected map[string]any
	testutil.LoadJSON(t, "standard/water_7a.json", &expected)
	require.Equal(t, "", diffMaps(expected, result.Fields))

	fs := result.FieldSet()
	volume, err := fs.Float("current_volume")
	require.NoError(t, err)
	require.InDelta(t, 3.866, volume, 1e-6)
	rssi, err := fs.Int("rssi_dbm")
	require.NoError(t, err)
	require.Equal(t, int64(10), rssi)
}

func diffMaps(expected, actual map[string]any) string {
	if len(expected) != len(actual) {
		return fmt.Sprintf("len mismatch expected %d actual %d (%v vs %v)", len(expected), len(actual), expected, actual)
	}
	for k, v := range expected {
		av, ok := actual[k]
		if !ok {
			return fmt.Sprintf("missing key %s", k)
		}
		switch ev := v.(type) {
		case float64:
			avFloat, ok := asFloat(av)
			if !ok || math.Abs(ev-avFloat) > 1e-6 {
				return fmt.Sprintf("key %s mismatch expected %v got %v", k, v, av)
			}
		default:
			if fmt.Sprintf("%v", v) != fmt.Sprintf("%v", av) {
				return fmt.Sprintf("key %s mismatch expected %v got %v", k, v, av)
			}
		}
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
