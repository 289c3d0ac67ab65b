// Package config defines the runtime configuration for a single gateway
// generation run: input proto files, output and working directories, metadata
// forwarding headers, TLS parameters for the rendered server, and protoc
// tuning knobs. It also provides validation and defaulting helpers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds all settings required to run the generation pipeline.
// Use Validate to fill implicit defaults and to check for required fields.
// A Config is constructed once per run and is read-only afterwards; the
// pipeline never consults ambient process state.
type Config struct {
	// ProtoFiles is the ordered list of input .proto files (required).
	// Order is significant: import aliasing and service registration in the
	// rendered program follow this order.
	ProtoFiles []string `json:"proto_files" yaml:"proto_files"`
	// OutputDir is where the rendered program and swagger assets are written.
	// Default: build
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	// WorkingDir holds intermediate generator outputs. When empty a temporary
	// directory is created and removed after the run (unless KeepWorkingDir).
	WorkingDir string `json:"working_dir" yaml:"working_dir"`
	// KeepWorkingDir disables cleanup of the working directory.
	KeepWorkingDir bool `json:"keep_working_dir" yaml:"keep_working_dir"`
	// Metadata lists gRPC metadata headers to forward from inbound HTTP
	// requests, each either "name" or "name:default".
	Metadata []string `json:"metadata" yaml:"metadata"`
	// NoJSONNames passes json_names_for_fields=false to the openapi generator
	// so swagger field names keep their proto (snake_case) spelling.
	NoJSONNames bool `json:"no_json_names" yaml:"no_json_names"`
	// Port is the listen port stamped into the rendered program. Default: 8080
	Port int `json:"port" yaml:"port"`
	// ProxyEndpoint is the default gRPC backend address stamped into the
	// rendered program. Default: localhost:50051
	ProxyEndpoint string `json:"proxy_endpoint" yaml:"proxy_endpoint"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// TLS configures inbound and outbound transport security for the rendered
	// server. The zero value means plaintext on both sides.
	TLS TLS `json:"tls" yaml:"tls"`
}

// TLS captures the certificate material wired into the rendered gateway.
// All fields are file paths; loading the material is the rendered server's
// concern, not the generator's.
type TLS struct {
	// ServeCert/ServeKey enable inbound TLS on the rendered server.
	ServeCert string `json:"serve_cert" yaml:"serve_cert"`
	ServeKey  string `json:"serve_key" yaml:"serve_key"`
	// ClientCA, when set together with ServeCert/ServeKey, makes the rendered
	// server require and verify client certificates (mutual TLS inbound).
	ClientCA string `json:"client_ca" yaml:"client_ca"`
	// ProxyCert enables server-auth TLS on the outbound channel to the
	// proxied gRPC backend.
	ProxyCert string `json:"proxy_cert" yaml:"proxy_cert"`
	// ProxyMTLSCert/ProxyMTLSKey upgrade the outbound channel to mutual TLS.
	// Only meaningful together with ProxyCert.
	ProxyMTLSCert string `json:"proxy_mtls_cert" yaml:"proxy_mtls_cert"`
	ProxyMTLSKey  string `json:"proxy_mtls_key" yaml:"proxy_mtls_key"`
	// ProxyCertHostname overrides the hostname used to verify the backend's
	// certificate.
	ProxyCertHostname string `json:"proxy_cert_hostname" yaml:"proxy_cert_hostname"`
	// NoCertValidation disables outbound peer verification. Only takes effect
	// when ProxyCert is unset; explicitly insecure.
	NoCertValidation bool `json:"no_cert_validation" yaml:"no_cert_validation"`
}

// TLSConfigError reports a mutually exclusive or incomplete TLS parameter
// combination.
type TLSConfigError struct {
	Reason string
}

func (e *TLSConfigError) Error() string {
	return fmt.Sprintf("invalid TLS configuration: %s", e.Reason)
}

// Validate normalizes the configuration by applying implicit defaults for
// OutputDir, Port and ProxyEndpoint, verifies that at least one proto file is
// provided, and checks the TLS parameter combination. Returns an error when
// ProtoFiles is empty or the TLS parameters are inconsistent.
func (c *Config) Validate() error {

	if c.OutputDir == "" {
		c.OutputDir = "build"
	}

	if c.Port == 0 {
		c.Port = 8080
	}

	if c.ProxyEndpoint == "" {
		c.ProxyEndpoint = "localhost:50051"
	}

	if len(c.ProtoFiles) == 0 {
		return fmt.Errorf("at least one proto file is required")
	}

	return c.TLS.validate()
}

func (t *TLS) validate() error {
	if (t.ServeCert == "") != (t.ServeKey == "") {
		return &TLSConfigError{Reason: "serve cert and serve key must be provided together"}
	}
	if t.ClientCA != "" && t.ServeCert == "" {
		return &TLSConfigError{Reason: "client CA requires a serve cert and key"}
	}
	if (t.ProxyMTLSCert == "") != (t.ProxyMTLSKey == "") {
		return &TLSConfigError{Reason: "proxy mTLS cert and key must be provided together"}
	}
	if t.ProxyMTLSCert != "" && t.ProxyCert == "" {
		return &TLSConfigError{Reason: "proxy mTLS requires a proxy cert"}
	}
	if t.ProxyCertHostname != "" && t.ProxyCert == "" {
		return &TLSConfigError{Reason: "proxy cert hostname override requires a proxy cert"}
	}
	return nil
}

// ServeTLS reports whether the rendered server should terminate TLS inbound.
func (t *TLS) ServeTLS() bool {
	return t.ServeCert != "" && t.ServeKey != ""
}

// MutualInbound reports whether the rendered server should require client
// certificates.
func (t *TLS) MutualInbound() bool {
	return t.ServeTLS() && t.ClientCA != ""
}

// LoadFile reads a YAML configuration file into a Config. The result still
// needs Validate before use.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("can't parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
