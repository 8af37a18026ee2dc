package plots_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/exprgraph/ui/plots"
	"github.com/stretchr/testify/require"
)

func TestChainCurves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.png")
	require.NoError(t, plots.ChainCurves(path, -3, 3, 121))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestChainCurvesBadArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.png")
	require.Error(t, plots.ChainCurves(path, -3, 3, 1))
	require.Error(t, plots.ChainCurves(path, 3, -3, 121))
}
