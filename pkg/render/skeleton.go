package render

// programSkeleton is the fixed gateway program skeleton, v2 of the template.
// The two insertion regions (import block, registration block) are typed
// slots fed from the aggregated program, never textual find-and-replace.
// Flag defaults are stamped from the run configuration but remain
// overridable at deploy time.
const programSkeleton = `// Code generated by grpc-gateway-wrapper. DO NOT EDIT.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/shamank/grpc-gateway-wrapper/pkg/gateway"
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)

var (
	proxyEndpoint     = flag.String("proxy_endpoint", {{printf "%q" .ProxyEndpoint}}, "Address of the proxied gRPC server")
	proxyCert         = flag.String("proxy_cert", {{printf "%q" .TLS.ProxyCert}}, "Certificate used to authenticate the proxied server")
	proxyMTLSCert     = flag.String("proxy_mtls_cert", {{printf "%q" .TLS.ProxyMTLSCert}}, "Client certificate presented to the proxied server")
	proxyMTLSKey      = flag.String("proxy_mtls_key", {{printf "%q" .TLS.ProxyMTLSKey}}, "Client key presented to the proxied server")
	proxyCertHostname = flag.String("proxy_cert_hostname", {{printf "%q" .TLS.ProxyCertHostname}}, "Hostname override for proxied server certificate verification")
	noCertValidation  = flag.Bool("no_cert_validation", {{.TLS.NoCertValidation}}, "Disable outbound certificate validation (INSECURE)")
	serveCert         = flag.String("serve_cert", {{printf "%q" .TLS.ServeCert}}, "TLS certificate for the inbound listener")
	serveKey          = flag.String("serve_key", {{printf "%q" .TLS.ServeKey}}, "TLS key for the inbound listener")
	mtlsClientCA      = flag.String("mtls_client_ca", {{printf "%q" .TLS.ClientCA}}, "CA bundle used to require and verify client certificates")
	servePort         = flag.Int("serve_port", {{.Port}}, "Port to serve on")
	swaggerPath       = flag.String("swagger_path", "swagger", "Directory holding the swagger assets")
)

// metadataHeaders are the inbound HTTP headers forwarded into gRPC call
// metadata for every proxied request. No other headers are forwarded.
var metadataHeaders = []string{
{{- range .ForwardHeaders}}
	{{printf "%q" .}},
{{- end}}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outbound := gateway.OutboundOptions{
		ProxyCert:        *proxyCert,
		MTLSCert:         *proxyMTLSCert,
		MTLSKey:          *proxyMTLSKey,
		CertHostname:     *proxyCertHostname,
		NoCertValidation: *noCertValidation,
	}
	opts, err := outbound.DialOptions()
	if err != nil {
		return err
	}

	mux := gateway.NewMux(metadataHeaders)
{{- range .Registrations}}
	if err := {{.Alias}}.Register{{.Service}}HandlerFromEndpoint(ctx, mux, *proxyEndpoint, opts); err != nil {
		return err
	}
{{- end}}

	root := http.NewServeMux()
	root.Handle("/swagger/", gateway.SwaggerHandler(*swaggerPath))
	root.Handle("/", mux)

	tlsCfg, err := gateway.ServerTLSConfig(*serveCert, *serveKey, *mtlsClientCA)
	if err != nil {
		return err
	}
	return gateway.ListenAndServe(fmt.Sprintf(":%d", *servePort), root, tlsCfg)
}

func main() {
	flag.Parse()
	zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	if err := run(); err != nil {
		zap.L().Fatal("gateway exited", zap.Error(err))
	}
}
`
