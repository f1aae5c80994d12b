//go:build contract

package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const goldenOutputDir = "golden"

func shouldRecordGoldenOutputs() bool {
	return os.Getenv("RECORD") == "1" || os.Getenv("UPDATE_GOLDEN") == "1"
}

// compareGoldenLines checks lines against testdata/golden/path, one line
// per entry. With RECORD=1 the golden file is rewritten first.
func compareGoldenLines(t *testing.T, path string, lines []string) {
	t.Helper()

	actual := strings.Join(lines, "\n") + "\n"
	fullPath := filepath.Join(testdataDir, goldenOutputDir, path)

	if shouldRecordGoldenOutputs() {
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(actual), 0o644))
	}

	expected, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		t.Fatalf("missing golden file %s; run `RECORD=1 go test -tags=contract ./tests/contract/...`", filepath.Join(goldenOutputDir, path))
	}
	require.NoError(t, err)

	require.Equal(t, string(expected), actual, "golden mismatch for %s", filepath.Join(goldenOutputDir, path))
}

func stringLines[E interface{ String() string }](items []E) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}
