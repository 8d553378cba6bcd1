package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ecmwf/ecflow-light/types"
)

func taskEnvironment() Environment {
	return NewEnvironment().
		With(EnvTaskName, "/path/to/task").
		With(EnvTaskPassword, "qwerty").
		With(EnvTaskRID, "12345").
		With(EnvTaskTryNo, "0")
}

func TestEnvironment_GetAndLookup(t *testing.T) {
	env := taskEnvironment()

	v, err := env.Get(EnvTaskName)
	require.NoError(t, err)
	assert.Equal(t, Variable{Name: EnvTaskName, Value: "/path/to/task"}, v)

	_, err = env.Get("ECF_UNKNOWN")
	require.Error(t, err)
	assert.Equal(t, types.ErrEnvironmentVariableNotFound, types.GetErrorCode(err))

	_, ok := env.Lookup("ECF_UNKNOWN")
	assert.False(t, ok)
}

func TestEnvironment_WithDoesNotMutate(t *testing.T) {
	base := NewEnvironment().With("A", "1")
	derived := base.With("A", "2").With("B", "3")

	a, _ := base.Lookup("A")
	assert.Equal(t, "1", a.Value)
	_, ok := base.Lookup("B")
	assert.False(t, ok)

	a, _ = derived.Lookup("A")
	assert.Equal(t, "2", a.Value)
	assert.Equal(t, []string{"A", "B"}, derived.Names())
}

func TestEnvironment_FirstOf(t *testing.T) {
	env := NewEnvironment().With("NOSMS", "1").With("NOECF", "yes")

	v, ok := env.FirstOf(OptOutVariables...)
	require.True(t, ok)
	assert.Equal(t, "NOECF", v.Name)

	_, ok = NewEnvironment().FirstOf(OptOutVariables...)
	assert.False(t, ok)
}

func TestEnvironment_FromLookup(t *testing.T) {
	source := map[string]string{EnvTaskName: "/s/f/t", "OTHER": "x"}
	lookup := func(name string) (string, bool) {
		v, ok := source[name]
		return v, ok
	}

	env := FromLookup(lookup, EnvTaskName, EnvTaskRID)
	assert.Equal(t, 1, env.Len())
	v, ok := env.Lookup(EnvTaskName)
	require.True(t, ok)
	assert.Equal(t, "/s/f/t", v.Value)
}

func TestLoadEnvironment_CapturesProcessVariables(t *testing.T) {
	t.Setenv(EnvTaskName, "/suite/family/task")
	t.Setenv("NO_ECF", "1")

	env := LoadEnvironment()
	v, ok := env.Lookup(EnvTaskName)
	require.True(t, ok)
	assert.Equal(t, "/suite/family/task", v.Value)
	_, ok = env.Lookup("NO_ECF")
	assert.True(t, ok)
}

func TestEnvironment_Identity(t *testing.T) {
	id, err := taskEnvironment().Identity()
	require.NoError(t, err)
	assert.Equal(t, TaskIdentity{RID: "12345", Name: "/path/to/task", Password: "qwerty", TryNo: "0"}, id)

	env := NewEnvironment().With(EnvTaskName, "/t").With(EnvTaskPassword, "p")
	_, err = env.Identity()
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidEnvironment, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "ECF_RID, ECF_TRYNO")
}

func TestExpandPlaceholder(t *testing.T) {
	t.Setenv("ECF_SOME_VARIABLE", "1500")
	env := taskEnvironment()

	tests := []struct {
		name   string
		param  string
		want   string
		fromOS bool
		ok     bool
	}{
		{name: "plain value untouched", param: "localhost", want: "localhost", ok: true},
		{name: "cached environment", param: "$ENV{ECF_NAME}", want: "/path/to/task", ok: true},
		{name: "os environment fallback", param: "$ENV{ECF_SOME_VARIABLE}", want: "1500", fromOS: true, ok: true},
		{name: "unknown variable kept", param: "$ENV{ECF_DOES_NOT_EXIST_42}", want: "$ENV{ECF_DOES_NOT_EXIST_42}", ok: false},
		{name: "partial placeholder untouched", param: "host-$ENV{ECF_NAME}", want: "host-$ENV{ECF_NAME}", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fromOS, ok := ExpandPlaceholder(tt.param, env)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.fromOS, fromOS)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestEnvironment_WithThenGet_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[A-Z][A-Z0-9_]{0,15}`).Draw(rt, "name")
		value := rapid.String().Draw(rt, "value")
		other := rapid.StringMatching(`[a-z][a-z0-9_]{0,15}`).Draw(rt, "other")

		env := NewEnvironment().With(other, "unchanged").With(name, value)

		v, err := env.Get(name)
		if err != nil {
			rt.Fatalf("Get(%q) failed: %v", name, err)
		}
		if v.Value != value {
			rt.Fatalf("Get(%q) = %q, want %q", name, v.Value, value)
		}
		o, _ := env.Lookup(other)
		if o.Value != "unchanged" {
			rt.Fatalf("unrelated variable %q changed to %q", other, o.Value)
		}
	})
}
