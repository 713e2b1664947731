// Package mode declares the pluggable backend contract the core pipeline
// builds against (spec.md §6): local process execution, a containerized
// target, or any other execution environment implements the same five
// methods plus getClasspath.
package mode

import (
	"context"

	"actiondriver/internal/model"
)

// Mode is the external collaborator that knows how to build, install, run,
// and clean up actions for one target execution environment.
type Mode interface {
	// Prepare is called once before any action is built.
	Prepare(ctx context.Context) error

	// BuildAndInstall compiles and installs action. A non-nil Outcome is an
	// early (typically COMPILE_FAILED or UNSUPPORTED) result; the caller
	// still enqueues the action so the runner stage observes exactly
	// totalToRun items (spec.md §4.2 step 1).
	BuildAndInstall(ctx context.Context, action model.Action) (*model.Outcome, error)

	// CreateActionCommand builds the child command for action, wired to
	// report back to monitorPort.
	CreateActionCommand(ctx context.Context, action model.Action, monitorPort int) (Command, error)

	// Cleanup releases any per-action resources (temp files, containers).
	Cleanup(ctx context.Context, action model.Action) error

	// Shutdown releases process-wide resources acquired by Prepare.
	Shutdown(ctx context.Context) error

	// GetClasspath returns the paths already on the build/run classpath, so
	// the report emitter doesn't suggest adding something already present.
	GetClasspath() []string
}

// Command is a child process (or equivalent) for one action; it is started
// by ExecuteLater.
type Command interface {
	// ExecuteLater starts the command asynchronously and returns a future
	// for its combined console output.
	ExecuteLater(ctx context.Context) Future

	// Destroy forcibly terminates the command. Idempotent.
	Destroy()
}

// Future resolves to the command's captured output once it has exited.
type Future interface {
	// Wait blocks until the command exits, returning its captured output
	// lines and, if the command failed, a non-nil error.
	Wait() ([]string, error)
}

// CommandFailure is returned by Future.Wait when the child exited with a
// non-zero status; it still carries whatever output was captured before
// exit, mirroring vogar's CommandFailedException.
type CommandFailure struct {
	ExitCode    int
	OutputLines []string
}

func (e *CommandFailure) Error() string {
	return "command failed"
}
