// Package env models the execution environment produced by the installer as
// an explicit immutable value.
//
// The installer mutates a shell environment (search path, conda activation);
// instead of mirroring that mutation onto the sctci process, the bootstrap
// stage captures the resulting environment once and later stages receive it
// as an *Env. Command resolution and subprocess spawning go through Env, so
// the ambient process environment of sctci itself never changes mid-run.
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Env is a snapshot of an execution environment: the search path used to
// resolve commands plus the full variable set handed to subprocesses.
// Treat it as read-only after construction.
type Env struct {
	// Path holds the search path entries, in resolution order.
	Path []string

	// Vars holds every environment variable, including PATH itself.
	Vars map[string]string

	// WorkDir is the directory subprocesses run in and where run
	// artifacts (coverage fragments, merged report) live.
	WorkDir string
}

// FromProcess snapshots the current process environment. Used as the
// pre-bootstrap environment and when --skip-install reuses an existing
// installation whose profile still needs sourcing.
func FromProcess(workDir string) *Env {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return New(vars, workDir)
}

// New builds an Env from a variable map. The search path is derived from
// the PATH entry.
func New(vars map[string]string, workDir string) *Env {
	e := &Env{
		Vars:    vars,
		WorkDir: workDir,
	}
	if p, ok := vars["PATH"]; ok {
		e.Path = filepath.SplitList(p)
	}
	return e
}

// Parse decodes the output of `env -0` (NUL-separated KEY=VALUE records)
// into an Env. This is how the bootstrap stage captures the environment a
// sourced installer profile produces, without mutating its own process.
func Parse(dump []byte, workDir string) (*Env, error) {
	vars := make(map[string]string)
	for _, rec := range strings.Split(string(dump), "\x00") {
		if rec == "" {
			continue
		}
		k, v, ok := strings.Cut(rec, "=")
		if !ok {
			return nil, fmt.Errorf("malformed environment record %q", rec)
		}
		vars[k] = v
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("environment dump is empty")
	}
	return New(vars, workDir), nil
}

// Environ renders the variable set as KEY=VALUE pairs sorted by key,
// suitable for exec.Cmd.Env and for the executor's env overlay.
func (e *Env) Environ() []string {
	out := make([]string, 0, len(e.Vars))
	for k, v := range e.Vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of e with the given variables added or replaced.
// The receiver is not modified.
func (e *Env) With(extra map[string]string) *Env {
	vars := make(map[string]string, len(e.Vars)+len(extra))
	for k, v := range e.Vars {
		vars[k] = v
	}
	for k, v := range extra {
		vars[k] = v
	}
	return New(vars, e.WorkDir)
}

// LookPath resolves name against e.Path, returning the first matching
// executable. Unlike exec.LookPath it never consults the process PATH, so
// resolution reflects the bootstrapped environment and nothing else.
func (e *Env) LookPath(name string) (string, error) {
	if strings.Contains(name, string(os.PathSeparator)) {
		if err := isExecutable(name); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return name, nil
	}
	for _, dir := range e.Path {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if err := isExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: executable not found on search path", name)
}

func isExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	if info.Mode()&0111 == 0 {
		return fmt.Errorf("permission bits deny execution")
	}
	return nil
}
