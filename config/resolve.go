package config

import (
	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/ecmwf/ecflow-light/request"
	"github.com/ecmwf/ecflow-light/types"
)

// Configuration is the resolved set of endpoints for one task.
type Configuration struct {
	Clients []ClientCfg
	// Skip is set when an opt-out variable replaced every endpoint with
	// a phony one.
	Skip bool
	// Source is the YAML file the endpoints came from.
	Source   string
	Settings *Config
}

// Resolve builds the endpoint list for the task described by env.
//
// The task identity variables are mandatory. Any of NO_ECF, NO_SMS, NOECF
// or NOSMS short-circuits to a single phony endpoint without reading YAML.
// Otherwise IFS_ECF_CONFIG_PATH must name a readable YAML file whose
// clients (or connections) list is resolved entry by entry; entries with
// an unsupported kind × protocol are logged and dropped.
func Resolve(env request.Environment, logger *zap.Logger) (*Configuration, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "configuration"))

	if _, err := env.Identity(); err != nil {
		return nil, err
	}

	if v, ok := env.FirstOf(request.OptOutVariables...); ok {
		logger.Warn("opt-out variable detected, configuring phony client",
			zap.String("variable", v.Name))
		return &Configuration{
			Clients:  []ClientCfg{MakePhony()},
			Skip:     true,
			Settings: DefaultConfig(),
		}, nil
	}

	path, ok := env.Lookup(request.EnvConfigPath)
	if !ok {
		return nil, types.NewError(types.ErrInvalidConfiguration,
			"unable to load YAML configuration as IFS_ECF_CONFIG_PATH is not defined")
	}
	logger.Debug("loading YAML configuration", zap.String("path", path.Value))

	settings, err := NewLoader().
		WithConfigPath(path.Value).
		RequireFile().
		WithoutEnvOverrides().
		Load()
	if err != nil {
		return nil, types.Errorf(types.ErrInvalidConfiguration,
			"unable to load YAML configuration %q", path.Value).WithCause(err)
	}

	resolved := &Configuration{Source: path.Value, Settings: settings}
	for _, entry := range settings.Entries() {
		cfg := resolveEntry(entry, env, logger)
		if !Supported(cfg.Kind, cfg.Protocol) {
			logger.Error("unsupported client configuration, ignoring",
				zap.Stringer("client", cfg))
			continue
		}
		logger.Debug("client configuration", zap.Stringer("client", cfg))
		resolved.Clients = append(resolved.Clients, cfg)
	}

	return resolved, nil
}

func resolveEntry(entry ClientEntry, env request.Environment, logger *zap.Logger) ClientCfg {
	version := DefaultVersion
	if entry.Version != nil {
		version = *entry.Version
	}
	if version != "" {
		if _, err := semver.NewVersion(version); err != nil {
			logger.Warn("client version is not a semantic version",
				zap.String("version", version), zap.Error(err))
		}
	}

	cfg := ClientCfg{
		Kind:       entry.Kind,
		Protocol:   entry.Protocol,
		Host:       expand(entry.Host, env, logger),
		Port:       expand(entry.Port, env, logger),
		Version:    version,
		Scheme:     entry.Scheme,
		Insecure:   entry.Insecure,
		Timeout:    entry.Timeout,
		RateLimit:  entry.RateLimit,
		Burst:      entry.Burst,
		Channel:    entry.Channel,
		Executable: entry.Executable,
		Detach:     entry.Detach,
	}
	return cfg.withDefaults()
}

func expand(param string, env request.Environment, logger *zap.Logger) string {
	value, fromOS, ok := request.ExpandPlaceholder(param, env)
	switch {
	case !ok:
		logger.Warn("environment variable not found, replacement not possible",
			zap.String("parameter", param))
	case fromOS:
		logger.Warn("placeholder resolved from process environment",
			zap.String("parameter", param))
	}
	return value
}
