package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/embr-lang/embr/internal/host"
	"github.com/embr-lang/embr/internal/interp"
)

// fileLoader resolves `import name;` (spec §4.3) to a sibling file
// `name.embr` next to the script that's running, the simplest policy a
// file-based host can implement — there is no module search path or
// package manifest, matching spec's "host decides what name resolves to."
type fileLoader struct{ dir string }

func (l fileLoader) Load(name string) (string, error) {
	path := filepath.Join(l.dir, name+".embr")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("import %q: %w", name, err)
	}
	return string(data), nil
}

// monotonicClock backs the `clock()` native with time.Since a fixed
// process-start instant, the "seconds since some fixed, process-relative
// epoch" spec §4.5 asks for.
type monotonicClock struct{ start time.Time }

func (c monotonicClock) Monotonic() float64 { return time.Since(c.start).Seconds() }

// wallClock backs `time()` with seconds since the Unix epoch.
type wallClock struct{}

func (wallClock) Now() float64 { return float64(time.Now().UnixNano()) / 1e9 }

// shellRunner backs the `term(cmd)` native (spec §4.5) by handing cmd to
// the platform shell and reporting its exit status.
type shellRunner struct{}

func (shellRunner) Run(cmd string) (int, error) {
	c := exec.Command("/bin/sh", "-c", cmd)
	err := c.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// newFileHost builds the concrete Host cmd/embr supplies the core (spec
// §1): a file-backed SourceLoader rooted next to scriptPath, a monotonic
// clock, a wall clock, and a shell command runner.
func newFileHost(scriptPath string) host.Host {
	return host.Host{
		Loader: fileLoader{dir: filepath.Dir(scriptPath)},
		Clock:  monotonicClock{start: time.Now()},
		Wall:   wallClock{},
		Runner: shellRunner{},
	}
}

// reportAndExitCode prints err the way the REPL and runFile both need to,
// then returns the matching exit code: 65 for a compile error, 70 for
// anything else (a runtime error), per spec §6.
func reportAndExitCode(err error) int {
	var compileErrs interp.CompileErrors
	if errors.As(err, &compileErrs) {
		fmt.Fprintln(os.Stderr, compileErrs.First().Error())
		return 65
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 70
}
