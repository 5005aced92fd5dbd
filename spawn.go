package subprocess

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Spawn starts the executable at path with the given argument vector and
// returns a handle registered in the default table. Arguments are passed
// verbatim; no shell expansion takes place. The child's three standard
// streams are wired to fresh pipe transports owned by the handle.
//
// On failure a *SpawnError is returned, every pipe created along the way
// is closed, and no handle escapes.
func Spawn(path string, args []string, opts ...Option) (*Process, error) {
	return DefaultTable.Spawn(path, args, opts...)
}

// Spawn starts a child process and registers its handle in the table.
// See the package-level Spawn.
func (t *Table) Spawn(path string, args []string, opts ...Option) (*Process, error) {
	cfg := newConfig(opts)

	resolved, err := resolveExecutable(path)
	if err != nil {
		return nil, err
	}

	stdin, childIn, pipeErr := newInputPipe()
	if pipeErr != nil {
		return nil, &SpawnError{Kind: SpawnResourceExhausted, Path: path, Err: pipeErr}
	}
	stdout, childOut, pipeErr := newOutputPipe(Stdout, cfg.clock, cfg.pollInterval)
	if pipeErr != nil {
		stdin.Close()
		childIn.Close()
		return nil, &SpawnError{Kind: SpawnResourceExhausted, Path: path, Err: pipeErr}
	}
	stderr, childErr, pipeErr := newOutputPipe(Stderr, cfg.clock, cfg.pollInterval)
	if pipeErr != nil {
		stdin.Close()
		childIn.Close()
		stdout.Close()
		childOut.Close()
		return nil, &SpawnError{Kind: SpawnResourceExhausted, Path: path, Err: pipeErr}
	}

	cmd := createCommand(resolved, args)
	cmd.Stdin = childIn
	cmd.Stdout = childOut
	cmd.Stderr = childErr
	if cfg.dir != "" {
		cmd.Dir = cfg.dir
	}
	if len(cfg.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), cfg.env)
	}

	if startErr := cmd.Start(); startErr != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		childIn.Close()
		childOut.Close()
		childErr.Close()
		return nil, classifySpawnError(path, startErr)
	}

	// The child inherited duplicates of these ends; the parent-side
	// copies must go so EOF propagates once the child exits.
	childIn.Close()
	childOut.Close()
	childErr.Close()

	p := &Process{
		id:     uuid.NewString(),
		name:   filepath.Base(resolved),
		path:   resolved,
		args:   args,
		pid:    cmd.Process.Pid,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		clock:  cfg.clock,
		logger: cfg.logger,
		table:  t,
		done:   make(chan struct{}),
	}
	p.state.Store(int32(StateRunning))

	t.add(p)
	go p.reap()

	cfg.logger.Info("spawned child process",
		zap.String("handle", p.id),
		zap.String("path", resolved),
		zap.Strings("args", args),
		zap.Int("pid", p.pid),
	)
	return p, nil
}

// resolveExecutable resolves path the way exec.LookPath does and
// classifies resolution failures before any OS resources are allocated.
func resolveExecutable(path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return "", &SpawnError{Kind: SpawnPermissionDenied, Path: path, Err: err}
		}
		return "", &SpawnError{Kind: SpawnExecutableNotFound, Path: path, Err: err}
	}
	return resolved, nil
}

func classifySpawnError(path string, err error) *SpawnError {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &SpawnError{Kind: SpawnExecutableNotFound, Path: path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &SpawnError{Kind: SpawnPermissionDenied, Path: path, Err: err}
	case errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.EMFILE),
		errors.Is(err, syscall.ENFILE),
		errors.Is(err, syscall.ENOMEM):
		return &SpawnError{Kind: SpawnResourceExhausted, Path: path, Err: err}
	default:
		return &SpawnError{Kind: SpawnOSFailure, Path: path, Err: err}
	}
}

// mergeEnv overlays overrides on the inherited environment. Override
// keys replace inherited entries; new keys are appended in sorted order
// so spawns are deterministic.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out = append(out, key+"="+overrides[key])
	}
	return out
}
