// Package gateway is the runtime support library imported by the rendered
// gateway program. It resolves the configured transport security for both the
// inbound listener and the outbound proxied channel, builds the grpc-gateway
// request multiplexer with the metadata forwarding policy applied, and serves
// the aggregated swagger assets.
package gateway

import (
	"crypto/tls"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
)

// SplitHeaderSpec splits a metadata header specification of the form
// "name" or "name:default" into the header name and its default value.
func SplitHeaderSpec(spec string) (name, def string) {
	name, def, _ = strings.Cut(spec, ":")
	return name, def
}

// metadataHeaderPrefix is the header prefix the served swagger document
// advertises for forwarded metadata fields.
const metadataHeaderPrefix = "grpc-metadata-"

// HeaderMatcher returns an incoming-header matcher that forwards exactly the
// named headers into outbound gRPC metadata, keyed by the lowercased name.
// Each allowed header is accepted both bare and in the grpc-metadata-<name>
// form the swagger document advertises, with the prefix stripped. Nothing is
// forwarded unless explicitly named.
func HeaderMatcher(forward []string) runtime.HeaderMatcherFunc {
	allowed := make(map[string]bool, len(forward))
	for _, spec := range forward {
		name, _ := SplitHeaderSpec(spec)
		allowed[strings.ToLower(name)] = true
	}
	return func(key string) (string, bool) {
		name := strings.TrimPrefix(strings.ToLower(key), metadataHeaderPrefix)
		if allowed[name] {
			return name, true
		}
		return "", false
	}
}

// NewMux builds the gateway request multiplexer. Routes registered first take
// precedence on pattern overlap, so callers must register services in their
// declared order. The JSON marshaler emits unpopulated fields so responses
// always carry the full message shape.
func NewMux(forwardHeaders []string) *runtime.ServeMux {
	return runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
			MarshalOptions: protojson.MarshalOptions{EmitUnpopulated: true},
			UnmarshalOptions: protojson.UnmarshalOptions{
				DiscardUnknown: true,
			},
		}),
		runtime.WithIncomingHeaderMatcher(HeaderMatcher(forwardHeaders)),
	)
}

// SwaggerHandler serves the static swagger assets (UI plus the merged
// document) under /swagger/.
func SwaggerHandler(assetDir string) http.Handler {
	return http.StripPrefix("/swagger/", http.FileServer(http.Dir(assetDir)))
}

// ListenAndServe runs the HTTP server, with TLS when tlsCfg is non-nil.
func ListenAndServe(addr string, handler http.Handler, tlsCfg *tls.Config) error {
	server := &http.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: tlsCfg,
	}
	if tlsCfg != nil {
		zap.L().Info("serving with TLS", zap.String("addr", addr))
		return server.ListenAndServeTLS("", "")
	}
	zap.L().Info("serving plaintext", zap.String("addr", addr))
	return server.ListenAndServe()
}
