package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/config"
	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// RunFunc executes executable with args. When detach is set it only starts
// the process and reports exit code -1.
type RunFunc func(ctx context.Context, executable string, args []string, detach bool) (exitCode int, output []byte, err error)

// CLIDispatcher delivers attribute updates by running ecflow_client.
type CLIDispatcher struct {
	cfg    config.ClientCfg
	run    RunFunc
	logger *zap.Logger
}

// NewCLIDispatcher creates a CLIDispatcher; a nil run uses os/exec.
func NewCLIDispatcher(cfg config.ClientCfg, run RunFunc, logger *zap.Logger) *CLIDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if run == nil {
		run = runCommand
	}
	if cfg.Executable == "" {
		cfg.Executable = config.DefaultExecutable
	}
	return &CLIDispatcher{cfg: cfg, run: run, logger: logger}
}

// Dispatch implements Dispatcher. The exit code of ecflow_client is
// reported in the Response; a non-zero code is a transport error.
func (d *CLIDispatcher) Dispatch(ctx context.Context, req request.Request) (request.Response, error) {
	payload, err := Format(d.cfg, req)
	if err != nil {
		return request.Response{}, err
	}

	logDispatch(d.logger, "dispatching CLI request", req)
	d.logger.Debug("running ecflow_client", zap.String("command", payload.Command))

	code, output, err := d.run(ctx, d.cfg.Executable, payload.Args, d.cfg.Detach)
	resp := request.Response{
		Endpoint: d.cfg.Name(),
		Protocol: d.cfg.Protocol,
		ExitCode: code,
		Detail:   string(bytes.TrimSpace(output)),
	}
	if err != nil {
		resp.Status = request.StatusFailed
		return resp, types.NewError(types.ErrTransport, "unable to run "+d.cfg.Executable).
			WithEndpoint(d.cfg.Name()).
			WithExitCode(code).
			WithCause(err)
	}
	if d.cfg.Detach {
		resp.Status = request.StatusSpawned
		return resp, nil
	}
	if code != 0 {
		resp.Status = request.StatusFailed
		return resp, types.Errorf(types.ErrTransport, "%s exited with code %d", d.cfg.Executable, code).
			WithEndpoint(d.cfg.Name()).
			WithExitCode(code)
	}
	resp.Status = request.StatusOK
	return resp, nil
}

func runCommand(ctx context.Context, executable string, args []string, detach bool) (int, []byte, error) {
	if detach {
		// not bound to ctx: the child outlives this call
		cmd := exec.Command(executable, args...)
		if err := cmd.Start(); err != nil {
			return -1, nil, err
		}
		go func() { _ = cmd.Wait() }()
		return -1, nil, nil
	}

	cmd := exec.CommandContext(ctx, executable, args...)
	output, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), output, nil
	}
	if err != nil {
		return -1, output, err
	}
	return 0, output, nil
}
