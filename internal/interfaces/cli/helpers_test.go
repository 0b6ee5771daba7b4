package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/phdg/internal/testutil"
)

const betaTable = "P/T 0 10\n0 -20 -20\n100 -20 -20\n"

const configTemplate = `log:
  level: error
classifier:
  workers: 2
metrics:
  enabled: %t
  textfile: %q
system:
  base_dir: %q
  substances:
    - {name: alpha, type: A, table: alpha.txt, formula_units: 1}
    - {name: beta, type: A, table: beta.txt, formula_units: 1}
  manifests:
    - - {coefficient: 1, type: A}
plots:
  output_dir: %q
  fields:
    pressure_range: [0, 10]
    temperature_range: [0, 100]
    width: 200
    height: 160
  gibbs_difference:
    pressure_range: [0, 10]
    temperature_range: [0, 100]
    pressure_step: 5
    temperature_step: 50
  phase_diagram:
    pressure_range: [0, 10]
    temperature_range: [0, 100]
    pressure_step: 1
    temperature_step: 10
    colors: ["#ff0000", "#0000ff"]
    width: 200
    height: 160
`

type fixture struct {
	dir     string
	config  string
	outDir  string
	metrics string
}

// newFixture writes two single-substance tables of type A and a config
// that classifies them.  Beta wins below T=30 K, alpha above.
func newFixture(t *testing.T, metricsEnabled bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:     dir,
		config:  filepath.Join(dir, "phdg.yaml"),
		outDir:  filepath.Join(dir, "out"),
		metrics: filepath.Join(dir, "metrics.prom"),
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), []byte(testutil.TableText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.txt"), []byte(betaTable), 0o644))
	yaml := fmt.Sprintf(configTemplate, metricsEnabled, f.metrics, dir, f.outDir)
	require.NoError(t, os.WriteFile(f.config, []byte(yaml), 0o644))
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"--config", f.config}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Count(sub string) int {
	return strings.Count(b.String(), sub)
}

//Personal.AI order the ending
