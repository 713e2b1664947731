// Package docker implements the containerized Mode (SPEC_FULL.md §4.9):
// actions are built the same way process Mode builds them — a static `go
// build` on the host — but run inside a throwaway container instead of as
// a bare child process, so an action's filesystem and network view can be
// sandboxed independently of the driver's own host.
//
// Grounded on the teacher's internal/nodemanager/runtime/docker/docker.go:
// the same github.com/moby/moby/client + github.com/containerd/errdefs
// container lifecycle (Create/Start/Logs/Inspect/Remove), adapted from
// "manage one long-lived agent container" to "run one action to
// completion and capture its output".
package docker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"

	"actiondriver/internal/mode"
	"actiondriver/internal/model"
)

// Config configures the Mode.
type Config struct {
	// Image is the container image the compiled action binary is run
	// under. It must have a shell-less static-binary-friendly entrypoint;
	// "scratch" or "alpine" both work since the binary is statically
	// linked.
	Image string
	// WorkDir is where build binaries are written on the host before
	// being bind-mounted into the container.
	WorkDir string
	// GoBin is the go tool binary, defaulting to "go" on PATH.
	GoBin string
}

// Mode is the containerized implementation of mode.Mode.
type Mode struct {
	cfg    Config
	client *client.Client
}

// New builds a docker Mode, connecting to the daemon described by the
// standard DOCKER_HOST/DOCKER_* environment variables.
func New(cfg Config) (*Mode, error) {
	if cfg.GoBin == "" {
		cfg.GoBin = "go"
	}
	if cfg.Image == "" {
		cfg.Image = "alpine:3.19"
	}
	cli, err := client.New(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("docker: create client: %w", err)
	}
	return &Mode{cfg: cfg, client: cli}, nil
}

// Prepare ensures the host build workspace exists and the daemon is
// reachable.
func (m *Mode) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(m.cfg.WorkDir, 0755); err != nil {
		return err
	}
	_, err := m.client.Ping(ctx, client.PingOptions{})
	return err
}

// BuildAndInstall cross-compiles action statically so the resulting binary
// runs unmodified inside the (likely libc-less) container image.
func (m *Mode) BuildAndInstall(ctx context.Context, action model.Action) (*model.Outcome, error) {
	if !action.HasSource() {
		outcome := model.NewOutcome(action.Name, model.ResultUnsupported, "no backing source for this action")
		return &outcome, nil
	}

	binPath := m.binaryPath(action)
	pkgDir := filepath.Dir(action.SourcePath)

	cmd := exec.CommandContext(ctx, m.cfg.GoBin, "build", "-o", binPath, "./"+pkgDir)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		outcome := model.NewOutcome(action.Name, model.ResultCompileFailed, splitLines(out.String())...)
		return &outcome, nil
	}
	return nil, nil
}

// CreateActionCommand creates (but does not yet start) a container that
// bind-mounts action's compiled binary and runs it with host networking,
// so the binary can dial back to the monitor listener on 127.0.0.1 exactly
// as the process Mode's child does.
func (m *Mode) CreateActionCommand(ctx context.Context, action model.Action, monitorPort int) (mode.Command, error) {
	binPath := m.binaryPath(action)
	containerPath := "/actiondriver/" + filepath.Base(binPath)

	opts := client.ContainerCreateOptions{
		Name:  containerName(action),
		Image: m.cfg.Image,
		Config: &container.Config{
			Cmd:          []string{containerPath},
			Env:          []string{fmt.Sprintf("ACTIONDRIVER_MONITOR_PORT=%d", monitorPort)},
			AttachStdout: true,
			AttachStderr: true,
		},
		HostConfig: &container.HostConfig{
			Binds:       []string{binPath + ":" + containerPath + ":ro"},
			NetworkMode: "host",
			AutoRemove:  false,
		},
	}

	result, err := m.client.ContainerCreate(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("docker: create container for %s: %w", action.Name, err)
	}

	return &command{client: m.client, containerID: result.ID}, nil
}

// Cleanup force-removes the container and the binary built for action.
func (m *Mode) Cleanup(ctx context.Context, action model.Action) error {
	if err := m.client.ContainerRemove(ctx, containerName(action), client.ContainerRemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("docker: remove container for %s: %w", action.Name, err)
	}
	if !action.HasSource() {
		return nil
	}
	err := os.Remove(m.binaryPath(action))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Shutdown closes the docker client connection.
func (m *Mode) Shutdown(ctx context.Context) error {
	return m.client.Close()
}

// GetClasspath returns the module cache directory, the same classpath
// analogue process Mode reports.
func (m *Mode) GetClasspath() []string {
	if gomodcache := os.Getenv("GOMODCACHE"); gomodcache != "" {
		return []string{gomodcache}
	}
	return []string{filepath.Join(os.Getenv("GOPATH"), "pkg", "mod")}
}

func (m *Mode) binaryPath(action model.Action) string {
	return filepath.Join(m.cfg.WorkDir, sanitize(action.Name))
}

func containerName(action model.Action) string {
	return "actiondriver-" + sanitize(action.Name)
}

func sanitize(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '/' || c == '#' || c == ' ' || c == ':' {
			out[i] = '_'
		} else {
			out[i] = c
		}
	}
	return string(out)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// command wraps one created-but-not-started container to satisfy
// mode.Command.
type command struct {
	client      *client.Client
	containerID string
}

func (c *command) ExecuteLater(ctx context.Context) mode.Future {
	f := &future{done: make(chan struct{})}

	if _, err := c.client.ContainerStart(ctx, c.containerID, client.ContainerStartOptions{}); err != nil {
		f.err = fmt.Errorf("docker: start container: %w", err)
		close(f.done)
		return f
	}

	go func() {
		defer close(f.done)

		logs, err := c.client.ContainerLogs(ctx, c.containerID, client.ContainerLogsOptions{
			ShowStdout: true,
			ShowStderr: true,
			Follow:     true,
		})
		if err != nil {
			f.err = fmt.Errorf("docker: stream logs: %w", err)
			return
		}
		defer logs.Close()

		scanner := bufio.NewScanner(logs)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		for scanner.Scan() {
			f.lines = append(f.lines, scanner.Text())
		}

		inspect, err := c.client.ContainerInspect(ctx, c.containerID, client.ContainerInspectOptions{})
		if err != nil {
			f.err = fmt.Errorf("docker: inspect container: %w", err)
			return
		}
		if exitCode := inspect.Container.State.ExitCode; exitCode != 0 {
			f.err = &mode.CommandFailure{ExitCode: exitCode, OutputLines: f.lines}
		}
	}()

	return f
}

func (c *command) Destroy() {
	_, _ = c.client.ContainerStop(context.Background(), c.containerID, client.ContainerStopOptions{})
}

type future struct {
	done  chan struct{}
	lines []string
	err   error
}

func (f *future) Wait() ([]string, error) {
	<-f.done
	return f.lines, f.err
}
