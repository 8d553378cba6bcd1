package tlsutil

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Options selects the behaviour of the transports built here.
type Options struct {
	// Timeout bounds a whole request; zero means no limit.
	Timeout time.Duration
	// Insecure disables server certificate verification. Only set from an
	// explicit `insecure: true` client entry.
	Insecure bool
}

// DefaultTLSConfig returns a hardened TLS configuration.
// MinVersion TLS 1.2, AEAD-only cipher suites.
func DefaultTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}
}

// TLSConfig returns DefaultTLSConfig, with verification switched off when
// opts.Insecure is set.
func TLSConfig(opts Options) *tls.Config {
	cfg := DefaultTLSConfig()
	if opts.Insecure {
		cfg.InsecureSkipVerify = true //nolint:gosec // opt-in per client entry
	}
	return cfg
}

// Transport returns an http.Transport for one-shot notification requests.
// Connections are not kept alive: each task process sends a handful of
// requests and exits.
func Transport(opts Options) *http.Transport {
	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: TLSConfig(opts),
		DialContext: (&net.Dialer{
			Timeout: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// HTTPClient returns an http.Client built on Transport.
func HTTPClient(opts Options) *http.Client {
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: Transport(opts),
	}
}
