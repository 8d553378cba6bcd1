package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ecmwf/ecflow-light/client"
	"github.com/ecmwf/ecflow-light/types"
)

type command struct {
	name string
	args []string
}

// arity is the accepted argument count range per command.
var arity = map[string][2]int{
	"meter":    {2, 2},
	"label":    {2, 2},
	"event":    {1, 2},
	"queue":    {2, 4},
	"init":     {0, 1},
	"complete": {0, 0},
	"abort":    {0, 1},
	"wait":     {1, 1},
	"version":  {0, 0},
	"help":     {0, 0},
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("no command given")
	}
	name := strings.TrimLeft(args[0], "-")
	if name == "h" {
		name = "help"
	}
	bounds, ok := arity[name]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", args[0])
	}
	rest := args[1:]
	if len(rest) < bounds[0] || len(rest) > bounds[1] {
		if bounds[0] == bounds[1] {
			return command{}, fmt.Errorf("%s expects %d argument(s), got %d", name, bounds[0], len(rest))
		}
		return command{}, fmt.Errorf("%s expects %d to %d arguments, got %d", name, bounds[0], bounds[1], len(rest))
	}
	return command{name: name, args: rest}, nil
}

// parseEvent maps the optional event argument onto set (true) or clear.
func parseEvent(args []string) (bool, error) {
	if len(args) < 2 {
		return true, nil
	}
	switch args[1] {
	case "", "set":
		return true, nil
	case "clear":
		return false, nil
	}
	return false, types.Errorf(types.ErrBadValue,
		"incorrect event value %q, expected either 'set' or 'clear'", args[1])
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func execute(ctx context.Context, c *client.ConfiguredClient, cmd command) (client.CompositeResponse, error) {
	a := cmd.args
	switch cmd.name {
	case "meter":
		value, err := strconv.Atoi(a[1])
		if err != nil {
			return client.CompositeResponse{}, types.Errorf(types.ErrBadValue,
				"meter value must be an integer, got %q", a[1])
		}
		return c.UpdateMeter(ctx, a[0], value)
	case "label":
		return c.UpdateLabel(ctx, a[0], a[1])
	case "event":
		value, err := parseEvent(a)
		if err != nil {
			return client.CompositeResponse{}, err
		}
		return c.UpdateEvent(ctx, a[0], value)
	case "queue":
		return c.UpdateQueue(ctx, a[0], a[1], arg(a, 2), arg(a, 3))
	case "init":
		return c.Init(ctx)
	case "complete":
		return c.Complete(ctx)
	case "abort":
		return c.Abort(ctx, arg(a, 0))
	case "wait":
		return c.Wait(ctx, a[0])
	}
	return client.CompositeResponse{}, types.Errorf(types.ErrNotImplemented, "command %q", cmd.name)
}
