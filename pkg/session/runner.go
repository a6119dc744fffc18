package session

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

// InstanceController is what the session needs from EC2
type InstanceController interface {
	InstanceState(ctx context.Context, instanceID string) (models.InstanceState, error)
	ModifyInstanceType(ctx context.Context, instanceID, instanceType string) error
	StartInstance(ctx context.Context, instanceID string) error
}

// CommandRunner runs an interactive command to completion
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands attached to the given terminal streams.
// A cancelled context kills the process.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements CommandRunner
func (e ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return cmd.Run()
}

// Config wires a Runner
type Config struct {
	Instances InstanceController
	Selector  Selector
	Commands  CommandRunner
	Types     []models.TableType

	InstanceID string
	Hostname   string

	// PollInterval spaces instance state checks
	PollInterval time.Duration
	// RetryDelay spaces ssh attempts that exit non-zero
	RetryDelay time.Duration

	// Confirm is read up to a newline before the instance is resized again
	Confirm io.Reader
	Logger  zerolog.Logger
}

// Runner drives one resize-and-connect session
type Runner struct {
	cfg Config
}

type step int

const (
	stepConnect step = iota
	stepWaitStopped
	stepSelect
)

// NewRunner creates a Runner, filling in default intervals
func NewRunner(cfg Config) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Runner{cfg: cfg}
}

// Run connects to the instance, resizing and starting it first when it is
// not up. It returns once an ssh session exits cleanly.
func (r *Runner) Run(ctx context.Context) error {
	const op = "session.Run"

	state, err := r.cfg.Instances.InstanceState(ctx, r.cfg.InstanceID)
	if err != nil {
		return err
	}
	r.cfg.Logger.Info().Str("instance_id", r.cfg.InstanceID).Str("state", string(state)).Msg("Found instance")

	var next step
	switch {
	case state.Up():
		next = stepConnect
	case state == models.StateStopped:
		next = stepSelect
	case state.Stopping():
		next = stepWaitStopped
	default:
		return errs.Errorf(errs.KindAWS, op, "don't know what to do with instance state %s", state)
	}

	for {
		switch next {
		case stepConnect:
			done, err := r.connect(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			next = stepWaitStopped
		case stepWaitStopped:
			if err := r.waitUntilStopped(ctx); err != nil {
				return err
			}
			next = stepSelect
		case stepSelect:
			if err := r.selectAndStart(ctx); err != nil {
				return err
			}
			next = stepConnect
		}
	}
}

func (r *Runner) selectAndStart(ctx context.Context) error {
	const op = "session.selectAndStart"

	instanceType, err := r.cfg.Selector.Select(ctx, r.cfg.Types)
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return errs.E(errs.KindConfig, op, err)
		}
		return err
	}

	r.cfg.Logger.Info().Str("instance_type", instanceType).Msg("Resizing instance")
	if err := r.cfg.Instances.ModifyInstanceType(ctx, r.cfg.InstanceID, instanceType); err != nil {
		return err
	}

	r.cfg.Logger.Info().Str("instance_id", r.cfg.InstanceID).Msg("Starting instance")
	return r.cfg.Instances.StartInstance(ctx, r.cfg.InstanceID)
}

type pollResult struct {
	state models.InstanceState
	err   error
}

// connect retries ssh while watching the instance. It reports true when
// ssh exited cleanly and false when the instance left pending/running
// and the user confirmed going on.
func (r *Runner) connect(ctx context.Context) (bool, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sshDone := make(chan error, 1)
	polled := make(chan pollResult, 1)

	go func() { sshDone <- r.sshUntilSuccess(watchCtx) }()
	go func() {
		state, err := r.pollWhileUp(watchCtx)
		polled <- pollResult{state: state, err: err}
	}()

	var res pollResult
	select {
	case err := <-sshDone:
		cancel()
		if err != nil {
			return false, err
		}
		return true, nil
	case res = <-polled:
		cancel()
		if err := <-sshDone; err == nil {
			return true, nil
		}
		if res.err != nil {
			return false, res.err
		}
	}

	r.cfg.Logger.Warn().Str("state", string(res.state)).Msg("Instance state changed while waiting for an SSH connection. Press ENTER to resize and restart the instance.")
	if err := r.waitForConfirm(ctx); err != nil {
		return false, err
	}
	return false, nil
}

func (r *Runner) sshUntilSuccess(ctx context.Context) error {
	const op = "session.ssh"

	for {
		r.cfg.Logger.Info().Str("host", r.cfg.Hostname).Msg("Waiting for an SSH connection")
		err := r.cfg.Commands.Run(ctx, "ssh", r.cfg.Hostname)
		if err == nil {
			r.cfg.Logger.Info().Msg("ssh exited normally")
			return nil
		}
		if ctx.Err() != nil {
			r.cfg.Logger.Info().Msg("Giving up on ssh")
			return ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return errs.E(errs.KindSubprocess, op, err)
		}

		r.cfg.Logger.Warn().Err(err).Msg("ssh exited with non-zero exit code")
		if err := sleep(ctx, r.cfg.RetryDelay); err != nil {
			return err
		}
	}
}

// pollWhileUp returns the first state outside pending/running
func (r *Runner) pollWhileUp(ctx context.Context) (models.InstanceState, error) {
	for {
		state, err := r.cfg.Instances.InstanceState(ctx, r.cfg.InstanceID)
		if err != nil {
			return "", err
		}
		if !state.Up() {
			r.cfg.Logger.Warn().Str("state", string(state)).Msg("Instance is no longer up")
			return state, nil
		}
		if err := sleep(ctx, r.cfg.PollInterval); err != nil {
			return "", err
		}
	}
}

func (r *Runner) waitUntilStopped(ctx context.Context) error {
	const op = "session.waitUntilStopped"

	r.cfg.Logger.Info().Msg("Waiting for instance to finish shutting down")
	for {
		if err := sleep(ctx, r.cfg.PollInterval); err != nil {
			return err
		}
		state, err := r.cfg.Instances.InstanceState(ctx, r.cfg.InstanceID)
		if err != nil {
			return err
		}
		switch state {
		case models.StateStopped:
			return nil
		case models.StateTerminated:
			return errs.Errorf(errs.KindAWS, op, "instance %s was terminated", r.cfg.InstanceID)
		}
	}
}

// waitForConfirm blocks until a newline or EOF on Confirm
func (r *Runner) waitForConfirm(ctx context.Context) error {
	if r.cfg.Confirm == nil {
		return nil
	}

	read := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.cfg.Confirm.Read(buf)
			if n == 1 && buf[0] == '\n' {
				read <- nil
				return
			}
			if err == io.EOF {
				read <- nil
				return
			}
			if err != nil {
				read <- errs.E(errs.KindIO, "session.waitForConfirm", err)
				return
			}
		}
	}()

	select {
	case err := <-read:
		return err
	case <-ctx.Done():
		// A reader without deadlines (a blocking terminal) keeps the goroutine
		// parked until the next byte arrives. Run returns on cancellation, so
		// there is no later confirmation for it to swallow.
		if d, ok := r.cfg.Confirm.(deadlineReader); ok && d.SetReadDeadline(time.Now()) == nil {
			<-read
			_ = d.SetReadDeadline(time.Time{})
		}
		return ctx.Err()
	}
}

// deadlineReader is implemented by pipes and other pollable *os.File values
type deadlineReader interface {
	SetReadDeadline(t time.Time) error
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
