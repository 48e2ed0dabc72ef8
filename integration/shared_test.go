//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedEcoscorePath holds the path to a shared ecoscore binary built once for all tests.
	sharedEcoscorePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getEcoscoreBinary returns the path to the ecoscore binary, building it once if needed.
func getEcoscoreBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "ecoscore-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		ecoscorePath := filepath.Join(tempDir, "ecoscore")
		buildCmd := exec.Command("go", "build", "-o", ecoscorePath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		buildCmd.Env = append(os.Environ(), "CGO_ENABLED=1")
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build ecoscore: %v\n%s", err, out))
		}

		sharedEcoscorePath = ecoscorePath
	})

	return sharedEcoscorePath
}

// fixtureSources is a small Python project with one clean and one wasteful module.
var fixtureSources = map[string]string{
	"pkg/clean.py": `def total(values):
    return sum(values)
`,
	"pkg/wasteful.py": `import time

def poll(items):
    out = []
    for a in items:
        for b in items:
            out.append(a + b)
    while True:
        time.sleep(1)
        break
    return out
`,
	"pkg/broken.py": "def oops(:\n    pass\n",
	"venv/lib/ignored.py": "x = 1\n",
}

// writeFixture materializes fixtureSources under a fresh directory.
func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, src := range fixtureSources {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	return root
}

// runEcoscore runs the binary in dir with extra environment and returns its combined output.
func runEcoscore(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getEcoscoreBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}
