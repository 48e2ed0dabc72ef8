// Package main times ecoscore against local clones of Python projects.
//
// Each case runs once with the cache disabled, then repeatedly against a fresh
// SQLite cache so the first cached run is cold and the rest are warm.
//
// Usage: go run ./benchmark <repo-base-dir> [out.csv]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"
)

const (
	runTimeout = 5 * time.Minute
	warmRuns   = 3
)

// benchCase is one ecoscore invocation inside a cloned repository.
type benchCase struct {
	repo string
	args []string
}

// timing is what a case measured; a zero duration means the run failed.
type timing struct {
	uncached time.Duration
	cold     time.Duration
	warm     time.Duration
}

var cases = []benchCase{
	{repo: "requests", args: []string{"analyze", "src/requests"}},
	{repo: "requests", args: []string{"history", "src/requests/sessions.py", "--commits", "20"}},
	{repo: "flask", args: []string{"analyze", "src/flask"}},
	{repo: "flask", args: []string{"history", "src/flask", "--commits", "10"}},
	{repo: "django", args: []string{"analyze", "django/db"}},
	{repo: "cpython", args: []string{"analyze", "Lib/json"}},
}

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <repo-base-dir> [out.csv]\n", os.Args[0])
		os.Exit(2)
	}
	if _, err := exec.LookPath("ecoscore"); err != nil {
		fmt.Fprintln(os.Stderr, "ecoscore binary not found in PATH")
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if len(os.Args) == 3 {
		f, err := os.Create(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	w := csv.NewWriter(out)
	_ = w.Write([]string{"repo", "args", "uncached", "cold", "warm_avg"})
	for _, c := range cases {
		dir := filepath.Join(os.Args[1], c.repo)
		if _, err := os.Stat(dir); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", c.repo, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: ecoscore %v\n", c.repo, c.args)
		t := measure(dir, c.args)
		_ = w.Write([]string{c.repo, fmt.Sprint(c.args), seconds(t.uncached), seconds(t.cold), seconds(t.warm)})
		w.Flush()
	}
	if err := w.Error(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// measure runs one case uncached, then cold and warm against a scratch cache.
func measure(dir string, args []string) timing {
	var t timing
	t.uncached, _ = timeRun(dir, append([]string{"--cache-backend", "none"}, args...), nil)

	cacheHome, err := os.MkdirTemp("", "ecoscore-bench-")
	if err != nil {
		return t
	}
	defer func() { _ = os.RemoveAll(cacheHome) }()
	env := []string{"HOME=" + cacheHome}

	cached := append([]string{"--cache-backend", "sqlite"}, args...)
	if t.cold, err = timeRun(dir, cached, env); err != nil {
		return t
	}
	var total time.Duration
	for range warmRuns {
		d, err := timeRun(dir, cached, env)
		if err != nil {
			return t
		}
		total += d
	}
	t.warm = total / warmRuns
	return t
}

// timeRun reports the wall time of one successful invocation.
func timeRun(dir string, args, env []string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ecoscore", slices.Concat(args, []string{"--output", "json"})...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = io.Discard

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 0, fmt.Errorf("timed out after %s", runTimeout)
	}
	if err != nil {
		return 0, err
	}
	return elapsed, nil
}

func seconds(d time.Duration) string {
	if d == 0 {
		return "FAILED"
	}
	return fmt.Sprintf("%.3f", d.Seconds())
}
