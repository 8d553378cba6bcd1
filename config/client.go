package config

import (
	"fmt"
	"net"
	"time"
)

// Client kinds.
const (
	KindLibrary = "library"
	KindCLI     = "cli"
	KindPhony   = "phony"
)

// Client protocols.
const (
	ProtocolUDP   = "udp"
	ProtocolTCP   = "tcp"
	ProtocolHTTP  = "http"
	ProtocolRedis = "redis"
	ProtocolNone  = "none"
)

// Defaults applied to resolved client configurations.
const (
	DefaultVersion      = "1.0"
	DefaultScheme       = "https"
	DefaultRedisChannel = "ecflow-light"
	DefaultExecutable   = "ecflow_client"
)

var supportedClients = map[[2]string]bool{
	{KindLibrary, ProtocolUDP}:   true,
	{KindLibrary, ProtocolHTTP}:  true,
	{KindLibrary, ProtocolRedis}: true,
	{KindCLI, ProtocolTCP}:       true,
	{KindPhony, ProtocolNone}:    true,
}

// Supported reports whether a dispatcher exists for kind × protocol.
func Supported(kind, protocol string) bool {
	return supportedClients[[2]string{kind, protocol}]
}

// ClientCfg is one resolved endpoint: placeholders substituted and
// defaults applied.
type ClientCfg struct {
	Kind       string
	Protocol   string
	Host       string
	Port       string
	Version    string
	Scheme     string
	Insecure   bool
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	Channel    string
	Executable string
	Detach     bool
}

// MakePhony returns the configuration of the no-op endpoint.
func MakePhony() ClientCfg {
	return ClientCfg{Kind: KindPhony, Protocol: ProtocolNone}
}

// Address returns host:port.
func (c ClientCfg) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Name identifies the endpoint in logs, responses and metrics.
func (c ClientCfg) Name() string {
	if c.Host == "" && c.Port == "" {
		return c.Kind + "/" + c.Protocol
	}
	return fmt.Sprintf("%s/%s@%s", c.Kind, c.Protocol, c.Address())
}

// String renders the endpoint without task specific parameters.
func (c ClientCfg) String() string {
	return fmt.Sprintf(`{"kind":%q,"protocol":%q,"host":%q,"port":%q,"version":%q}`,
		c.Kind, c.Protocol, c.Host, c.Port, c.Version)
}

func (c ClientCfg) withDefaults() ClientCfg {
	if c.Protocol == ProtocolHTTP && c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.Protocol == ProtocolRedis && c.Channel == "" {
		c.Channel = DefaultRedisChannel
	}
	if c.Kind == KindCLI && c.Executable == "" {
		c.Executable = DefaultExecutable
	}
	if c.Burst <= 0 && c.RateLimit > 0 {
		c.Burst = 1
	}
	return c
}
