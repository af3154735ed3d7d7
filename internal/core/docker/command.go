package docker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	maxLineSize      = 4 * 1024 * 1024
	defaultWaitDelay = 5 * time.Second
)

var (
	minDockerVersion  = semver.MustParse("23.0.0")
	minComposeVersion = semver.MustParse("2.0.0")
)

// Exec describes a single docker invocation. When Capture is false the child
// inherits the terminal; otherwise its output is delivered line by line.
// Callbacks for stdout and stderr may run concurrently.
type Exec struct {
	Args     []string
	Capture  bool
	OnStdout func(line string)
	OnStderr func(line string)
}

type Result struct {
	ExitCode  int
	StartTime time.Time
	ExitTime  time.Time
	Stderr    []string
}

func (r Result) Success() bool {
	return r.ExitCode == 0
}

func (r Result) Duration() time.Duration {
	return r.ExitTime.Sub(r.StartTime)
}

type Executor interface {
	Execute(ctx context.Context, e Exec) (Result, error)
}

// Command runs a docker binary. A non-zero exit code is reported through
// Result, not as an error. WaitDelay bounds how long output from processes
// the binary leaves behind is awaited once it exits or is cancelled.
type Command struct {
	Binary    string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	WaitDelay time.Duration
}

func NewCommand(binary string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Command{
		Binary:    binary,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
		WaitDelay: defaultWaitDelay,
	}
}

// Detect locates the docker binary and verifies that the client, and the
// compose plugin when requireCompose is set, are recent enough.
func Detect(ctx context.Context, binary string, requireCompose bool, logger *slog.Logger) (*Command, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDockerNotFound, binary)
	}

	cmd := NewCommand(path, logger)

	clientVersion, err := cmd.output(ctx, "version", "--format", "{{.Client.Version}}")
	if err != nil {
		return nil, fmt.Errorf("failed to get docker version: %w", err)
	}
	if err := checkVersion(clientVersion, minDockerVersion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDockerTooOld, err)
	}

	if requireCompose {
		composeVersion, err := cmd.output(ctx, "compose", "version", "--short")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoComposeFound, err)
		}
		if err := checkVersion(composeVersion, minComposeVersion); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrComposeTooOld, err)
		}
	}

	cmd.Logger.Debug("detected docker", "binary", path, "version", clientVersion)
	return cmd, nil
}

func checkVersion(raw string, minimum *semver.Version) error {
	v, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("unparseable version %q: %w", raw, err)
	}
	// Compare directly: vendor builds carry prerelease suffixes ("2.29.7-desktop.1")
	// that constraint checks would reject.
	if v.LessThan(minimum) {
		return fmt.Errorf("version %s is older than %s", v, minimum)
	}
	return nil
}

func (c *Command) String() string {
	return c.Binary
}

func (c *Command) Execute(ctx context.Context, e Exec) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Binary, e.Args...)
	cmd.WaitDelay = c.WaitDelay

	var result Result
	var wg sync.WaitGroup
	var writers []*io.PipeWriter

	if e.Capture {
		stdout, stdoutW := io.Pipe()
		stderr, stderrW := io.Pipe()
		cmd.Stdout = stdoutW
		cmd.Stderr = stderrW
		writers = append(writers, stdoutW, stderrW)

		wg.Add(2)
		go func() {
			defer wg.Done()
			readLines(stdout, e.OnStdout)
		}()
		go func() {
			defer wg.Done()
			readLines(stderr, func(line string) {
				result.Stderr = append(result.Stderr, line)
				if e.OnStderr != nil {
					e.OnStderr(line)
				}
			})
		}()
	} else {
		cmd.Stdin = c.Stdin
		cmd.Stdout = c.Stdout
		cmd.Stderr = c.Stderr
	}

	// Wait returns only after output copying stops, so the readers see EOF
	// once the writers are closed.
	finish := func() {
		for _, w := range writers {
			_ = w.Close()
		}
		wg.Wait()
	}

	if err := cmd.Start(); err != nil {
		finish()
		return result, fmt.Errorf("failed to start %s: %w", c.Binary, err)
	}
	result.StartTime = time.Now()

	err := cmd.Wait()
	result.ExitTime = time.Now()
	finish()

	if errors.Is(err, exec.ErrWaitDelay) {
		c.Logger.Debug("docker left output open after exit", "args", strings.Join(e.Args, " "))
		err = nil
	}

	c.Logger.Debug("docker exited",
		"args", strings.Join(e.Args, " "),
		"exit_code", cmd.ProcessState.ExitCode(),
		"duration", result.Duration())

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to wait for %s: %w", c.Binary, err)
	}

	return result, nil
}

func (c *Command) output(ctx context.Context, args ...string) (string, error) {
	var lines []string
	result, err := c.Execute(ctx, Exec{
		Args:     args,
		Capture:  true,
		OnStdout: func(line string) { lines = append(lines, line) },
	})
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", &ExitError{Args: args, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return strings.Join(lines, "\n"), nil
}

func readLines(r io.Reader, onLine func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if onLine != nil {
			onLine(line)
		}
	}
	// Drain whatever is left so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}
