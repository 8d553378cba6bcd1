// Command ecflow_light_multiple_client sends a meter, a label and an event
// update every STEP_SECONDS, N_STEPS times. It exercises a suite
// configuration end to end and doubles as a small load generator.
//
//	ecflow_light_multiple_client 120 1
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	ecflowlight "github.com/ecmwf/ecflow-light"
	"github.com/ecmwf/ecflow-light/internal/bootstrap"
	"github.com/ecmwf/ecflow-light/request"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type plan struct {
	steps int
	step  time.Duration
}

func parseArgs(args []string) (plan, error) {
	if len(args) != 2 {
		return plan{}, fmt.Errorf("incorrect number of arguments")
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 0 {
		return plan{}, fmt.Errorf("n_steps must be a non-negative integer, got %q", args[0])
	}
	seconds, err := strconv.Atoi(args[1])
	if err != nil || seconds < 0 {
		return plan{}, fmt.Errorf("step_size must be a non-negative integer, got %q", args[1])
	}
	return plan{steps: steps, step: time.Duration(seconds) * time.Second}, nil
}

// notifier is the subset of the ecflowlight API used per step.
type notifier struct {
	meter func(name string, value int) int
	label func(name, value string) int
	event func(name string, value bool) int
}

var defaultNotifier = notifier{
	meter: ecflowlight.UpdateMeter,
	label: ecflowlight.UpdateLabel,
	event: ecflowlight.UpdateEvent,
}

// runSteps returns the number of failed notifications.
func runSteps(ctx context.Context, p plan, n notifier, out io.Writer) int {
	failures := 0
	for i := 0; i < p.steps; i++ {
		minute, second := i/60, i%60
		fmt.Fprintf(out, ">>> minute: %d, second: %d\n", minute, second)

		failures += n.meter("task_meter", second)
		failures += n.label("task_label", fmt.Sprintf("Going on <%d><%d>", minute, second))
		failures += n.event("task_event", second%2 == 0)

		if i == p.steps-1 {
			break
		}
		select {
		case <-ctx.Done():
			return failures
		case <-time.After(p.step):
		}
	}
	return failures
}

func run(args []string, stdout, stderr io.Writer) int {
	p, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n  Usage: ecflow_light_multiple_client <n_steps> <step_size>\n\n", err)
		return 1
	}

	rt, err := bootstrap.Start(request.LoadEnvironment())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	ecflowlight.SetLogger(rt.Logger)
	ecflowlight.Configure(rt.ClientOptions()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failures := runSteps(ctx, p, defaultNotifier, stdout)

	if err := ecflowlight.Close(); err != nil {
		rt.Logger.Warn("failed to close endpoints", zap.Error(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(shutdownCtx); err != nil {
		rt.Logger.Warn("failed to flush metrics or traces", zap.Error(err))
	}

	if failures > 0 {
		rt.Logger.Error("some notifications failed", zap.Int("failures", failures))
		return 1
	}
	return 0
}
