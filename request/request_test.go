package request

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/ecflow-light/types"
)

func TestRequest_Description(t *testing.T) {
	env := taskEnvironment()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "meter",
			req:  MeterUpdate(env, "counter", 42),
			want: "UpdateNodeAttribute: name=counter, value=42, at node=/path/to/task",
		},
		{
			name: "event set",
			req:  EventUpdate(env, "flag", true),
			want: "UpdateNodeAttribute: name=flag, value=1, at node=/path/to/task",
		},
		{
			name: "abort",
			req:  AbortStatus(env, "disk full"),
			want: "UpdateNodeStatus: new_status=abort, at node=/path/to/task",
		},
		{
			name: "missing parts",
			req:  NewUpdateNodeAttribute(NewEnvironment(), NewOptions()),
			want: "UpdateNodeAttribute: name=?, value=?, at node=?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Description())
		})
	}
}

func TestRequest_Builders(t *testing.T) {
	env := taskEnvironment()

	ev := EventUpdate(env, "flag", false)
	assert.Equal(t, KindUpdateNodeAttribute, ev.Kind())
	v, err := ev.Option(OptValue)
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	q := QueueUpdate(env, "steps", "complete", "3", "")
	assert.Equal(t, "complete", q.OptionOr(OptQueueAction, ""))
	assert.Equal(t, "3", q.OptionOr(OptQueueStep, ""))
	_, ok := q.Options().Lookup(OptQueuePath)
	assert.False(t, ok)

	w := WaitStatus(env, "/s/f/t == complete")
	assert.Equal(t, KindUpdateNodeStatus, w.Kind())
	assert.Equal(t, "/s/f/t == complete", w.OptionOr(OptWaitExpression, ""))

	for _, req := range []Request{InitStatus(env), CompleteStatus(env)} {
		assert.Equal(t, KindUpdateNodeStatus, req.Kind())
	}
}

func TestRequest_AccessorsAndIDs(t *testing.T) {
	a := LabelUpdate(taskEnvironment(), "info", "hello")
	b := LabelUpdate(taskEnvironment(), "info", "hello")

	assert.NotEqual(t, uuid.Nil, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())

	name, err := a.Env(EnvTaskName)
	require.NoError(t, err)
	assert.Equal(t, "/path/to/task", name)

	_, err = a.Env("ECF_HOST")
	assert.Equal(t, types.ErrEnvironmentVariableNotFound, types.GetErrorCode(err))
	_, err = a.Option(OptAction)
	assert.Equal(t, types.ErrOptionNotFound, types.GetErrorCode(err))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "UpdateNodeAttribute", KindUpdateNodeAttribute.String())
	assert.Equal(t, "UpdateNodeStatus", KindUpdateNodeStatus.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}

func TestResponse_OK(t *testing.T) {
	assert.True(t, Response{Status: StatusOK}.OK())
	assert.True(t, Response{Status: StatusSpawned}.OK())
	assert.False(t, Response{Status: StatusFailed}.OK())
	assert.Equal(t, "{library/udp@h:1 OK}", Response{Endpoint: "library/udp@h:1", Status: StatusOK}.String())
}
