package request

import (
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/ecmwf/ecflow-light/types"
)

// Task identity variables exported by ecFlow into every task job.
const (
	EnvTaskName     = "ECF_NAME"
	EnvTaskPassword = "ECF_PASS"
	EnvTaskRID      = "ECF_RID"
	EnvTaskTryNo    = "ECF_TRYNO"
	EnvHost         = "ECF_HOST"
	EnvConfigPath   = "IFS_ECF_CONFIG_PATH"
	EnvHome         = "HOME"
)

// IdentityVariables must all be present for a task to talk to its server.
var IdentityVariables = []string{EnvTaskRID, EnvTaskName, EnvTaskPassword, EnvTaskTryNo}

// OptOutVariables disable notifications when any of them is defined.
var OptOutVariables = []string{"NO_ECF", "NO_SMS", "NOECF", "NOSMS"}

// CapturedVariables lists the names LoadEnvironment reads from the process.
var CapturedVariables = slices.Concat(
	IdentityVariables,
	OptOutVariables,
	[]string{EnvHost, EnvConfigPath, EnvHome},
)

// Variable is a named environment value.
type Variable struct {
	Name  string
	Value string
}

// Environment is an immutable name → Variable map. The zero value is empty
// and ready to use.
type Environment struct {
	vars map[string]Variable
}

// NewEnvironment returns an empty Environment.
func NewEnvironment() Environment {
	return Environment{}
}

// LoadEnvironment captures CapturedVariables from the OS environment.
func LoadEnvironment() Environment {
	return FromLookup(os.LookupEnv, CapturedVariables...)
}

// FromLookup builds an Environment holding each of names that lookup knows.
func FromLookup(lookup func(string) (string, bool), names ...string) Environment {
	env := NewEnvironment()
	for _, name := range names {
		if value, ok := lookup(name); ok {
			env = env.With(name, value)
		}
	}
	return env
}

// With returns a copy of e with name set to value.
func (e Environment) With(name, value string) Environment {
	vars := make(map[string]Variable, len(e.vars)+1)
	maps.Copy(vars, e.vars)
	vars[name] = Variable{Name: name, Value: value}
	return Environment{vars: vars}
}

// Get returns the named variable or an ENVIRONMENT_VARIABLE_NOT_FOUND error.
func (e Environment) Get(name string) (Variable, error) {
	if v, ok := e.vars[name]; ok {
		return v, nil
	}
	return Variable{}, types.Errorf(types.ErrEnvironmentVariableNotFound,
		"environment variable %q not found", name)
}

// Lookup returns the named variable, if present.
func (e Environment) Lookup(name string) (Variable, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// FirstOf returns the first of names present in e.
func (e Environment) FirstOf(names ...string) (Variable, bool) {
	for _, name := range names {
		if v, ok := e.vars[name]; ok {
			return v, true
		}
	}
	return Variable{}, false
}

// Len returns the number of variables held.
func (e Environment) Len() int {
	return len(e.vars)
}

// Names returns the variable names in sorted order.
func (e Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.vars))
}

// TaskIdentity is the set of variables identifying one task attempt.
type TaskIdentity struct {
	RID      string
	Name     string
	Password string
	TryNo    string
}

// Identity extracts the task identity, failing with INVALID_ENVIRONMENT when
// any identity variable is missing.
func (e Environment) Identity() (TaskIdentity, error) {
	var missing []string
	for _, name := range IdentityVariables {
		if _, ok := e.vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return TaskIdentity{}, types.Errorf(types.ErrInvalidEnvironment,
			"missing task variables: %s", strings.Join(missing, ", "))
	}
	return TaskIdentity{
		RID:      e.vars[EnvTaskRID].Value,
		Name:     e.vars[EnvTaskName].Value,
		Password: e.vars[EnvTaskPassword].Value,
		TryNo:    e.vars[EnvTaskTryNo].Value,
	}, nil
}

var placeholderPattern = regexp.MustCompile(`^\$ENV\{([^}]*)\}$`)

// ExpandPlaceholder substitutes a parameter of the exact form $ENV{NAME}.
// The cached Environment is consulted first, then the OS environment
// (reported through fromOS). When NAME is found nowhere, param is returned
// unchanged with ok=false. Parameters that are not placeholders are
// returned as-is with ok=true.
func ExpandPlaceholder(param string, env Environment) (value string, fromOS bool, ok bool) {
	match := placeholderPattern.FindStringSubmatch(param)
	if match == nil {
		return param, false, true
	}
	name := match[1]
	if v, found := env.Lookup(name); found {
		return v.Value, false, true
	}
	if v, found := os.LookupEnv(name); found {
		return v, true, true
	}
	return param, false, false
}
