package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/ecflow-light/testutil"
)

func TestParseArgs(t *testing.T) {
	p, err := parseArgs([]string{"3", "2"})
	require.NoError(t, err)
	assert.Equal(t, plan{steps: 3, step: 2 * time.Second}, p)

	for _, args := range [][]string{nil, {"1"}, {"x", "1"}, {"1", "-1"}, {"1", "2", "3"}} {
		_, err := parseArgs(args)
		assert.Error(t, err, args)
	}
}

type recorder struct {
	meters []int
	labels []string
	events []bool
	fail   bool
}

func (r *recorder) notifier() notifier {
	code := func() int {
		if r.fail {
			return 1
		}
		return 0
	}
	return notifier{
		meter: func(_ string, v int) int { r.meters = append(r.meters, v); return code() },
		label: func(_, v string) int { r.labels = append(r.labels, v); return code() },
		event: func(_ string, v bool) int { r.events = append(r.events, v); return code() },
	}
}

func TestRunSteps(t *testing.T) {
	r := &recorder{}
	var out bytes.Buffer

	failures := runSteps(context.Background(), plan{steps: 3}, r.notifier(), &out)

	assert.Zero(t, failures)
	assert.Equal(t, []int{0, 1, 2}, r.meters)
	assert.Equal(t, []string{"Going on <0><0>", "Going on <0><1>", "Going on <0><2>"}, r.labels)
	assert.Equal(t, []bool{true, false, true}, r.events)
	assert.Contains(t, out.String(), ">>> minute: 0, second: 2")
}

func TestRunSteps_CountsFailures(t *testing.T) {
	r := &recorder{fail: true}
	failures := runSteps(context.Background(), plan{steps: 2}, r.notifier(), &bytes.Buffer{})
	assert.Equal(t, 6, failures)
}

func TestRunSteps_StopsOnCancel(t *testing.T) {
	r := &recorder{}
	runSteps(testutil.CancelledContext(), plan{steps: 100, step: time.Hour}, r.notifier(), &bytes.Buffer{})
	assert.Len(t, r.meters, 1)
}

func TestRun_BadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"ten"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: ecflow_light_multiple_client")
}
