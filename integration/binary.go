//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var binPath string

func buildBinary(dir string) (string, error) {
	bin := filepath.Join(dir, "bookshelf")
	cmd := exec.Command("go", "build", "-o", bin, "../cmd/bookshelf")
	cmd.Stderr = os.Stderr
	return bin, cmd.Run()
}

// runBookshelf starts a fresh process, so every call is a restart.
func runBookshelf(t *testing.T, ctx context.Context, workDir, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := exec.CommandContext(ctx, binPath, append(args, "--log-level", "error")...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "BOOKSHELF_DATA_FILE=", "BOOKSHELF_METRICS_FILE=")
	cmd.Stdin = bytes.NewBufferString(stdin)

	out, err := cmd.CombinedOutput()
	return string(out), err
}
