// Command gateway-wrapper generates a single HTTP/JSON-to-gRPC gateway
// program from a set of proto service definitions, together with the merged
// swagger documentation and its serve assets.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/shamank/grpc-gateway-wrapper/pkg/config"
	"github.com/shamank/grpc-gateway-wrapper/pkg/wrapper"
)

func main() {
	var (
		protoFiles  = flag.String("proto_files", "", "Comma-separated list of proto files to generate from (required)")
		configFile  = flag.String("config", "", "Optional YAML config file; flags override its values")
		outputDir   = flag.String("output_dir", "", "Location for output files")
		workingDir  = flag.String("working_dir", "", "Location for intermediate files; temporary if unset")
		noCleanup   = flag.Bool("no_cleanup", false, "Don't clean up the working dir")
		metadata    = flag.String("metadata", "", "Comma-separated gRPC metadata header(s) to forward, each name[:default]")
		noJSONNames = flag.Bool("no_json_names", false, "Disable camelCase JSON field names in the swagger output")
		port        = flag.Int("port", 0, "Listen port stamped into the rendered program")
		proxy       = flag.String("proxy_endpoint", "", "Default gRPC backend address stamped into the rendered program")
		debug       = flag.Bool("debug", false, "Verbose logging")

		serveCert         = flag.String("serve_cert", "", "TLS certificate for the rendered server")
		serveKey          = flag.String("serve_key", "", "TLS key for the rendered server")
		clientCA          = flag.String("mtls_client_ca", "", "Client CA bundle for inbound mutual TLS")
		proxyCert         = flag.String("proxy_cert", "", "Certificate used to authenticate the proxied backend")
		proxyMTLSCert     = flag.String("proxy_mtls_cert", "", "Client certificate presented to the proxied backend")
		proxyMTLSKey      = flag.String("proxy_mtls_key", "", "Client key presented to the proxied backend")
		proxyCertHostname = flag.String("proxy_cert_hostname", "", "Hostname override for backend certificate verification")
		noCertValidation  = flag.Bool("no_cert_validation", false, "Disable outbound certificate validation (INSECURE)")
	)
	flag.Parse()

	cfg := &config.Config{}
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	if *protoFiles != "" {
		cfg.ProtoFiles = splitList(*protoFiles)
	}
	if *metadata != "" {
		cfg.Metadata = splitList(*metadata)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *workingDir != "" {
		cfg.WorkingDir = *workingDir
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *proxy != "" {
		cfg.ProxyEndpoint = *proxy
	}
	cfg.KeepWorkingDir = cfg.KeepWorkingDir || *noCleanup
	cfg.NoJSONNames = cfg.NoJSONNames || *noJSONNames
	cfg.Debug = cfg.Debug || *debug

	setIfNotEmpty(&cfg.TLS.ServeCert, *serveCert)
	setIfNotEmpty(&cfg.TLS.ServeKey, *serveKey)
	setIfNotEmpty(&cfg.TLS.ClientCA, *clientCA)
	setIfNotEmpty(&cfg.TLS.ProxyCert, *proxyCert)
	setIfNotEmpty(&cfg.TLS.ProxyMTLSCert, *proxyMTLSCert)
	setIfNotEmpty(&cfg.TLS.ProxyMTLSKey, *proxyMTLSKey)
	setIfNotEmpty(&cfg.TLS.ProxyCertHostname, *proxyCertHostname)
	cfg.TLS.NoCertValidation = cfg.TLS.NoCertValidation || *noCertValidation

	if err := wrapper.Run(context.Background(), cfg); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
