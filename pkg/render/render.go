// Package render synthesizes the final output texts: the gateway program
// source rendered from a fixed skeleton with two ordered insertion regions,
// and the aggregated swagger document with the metadata forwarding headers
// stamped in. Rendering is deterministic: identical inputs produce
// byte-identical output.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"text/template"

	"go.uber.org/zap"

	"github.com/shamank/grpc-gateway-wrapper/pkg/aggregate"
	"github.com/shamank/grpc-gateway-wrapper/pkg/config"
	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
	"github.com/shamank/grpc-gateway-wrapper/pkg/gateway"
)

var programTemplate = template.Must(template.New("gateway.go").Parse(programSkeleton))

type programData struct {
	Imports        []aggregate.Import
	Registrations  []aggregate.Registration
	ForwardHeaders []string
	ProxyEndpoint  string
	Port           int
	TLS            config.TLS
}

// Program renders the gateway program source from the aggregated program and
// the run configuration. The result is gofmt-formatted; a formatting failure
// means the skeleton itself is broken and is surfaced as an error.
func Program(prog *aggregate.Program, cfg *config.Config) ([]byte, error) {
	data := programData{
		Imports:        prog.Imports,
		Registrations:  prog.Registrations,
		ForwardHeaders: headerNames(cfg.Metadata),
		ProxyEndpoint:  cfg.ProxyEndpoint,
		Port:           cfg.Port,
		TLS:            cfg.TLS,
	}

	zap.L().Debug("rendering gateway program",
		zap.Int("imports", len(data.Imports)),
		zap.Int("registrations", len(data.Registrations)),
		zap.String("outbound_security", outboundMode(cfg.TLS).String()))

	var buf bytes.Buffer
	if err := programTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render gateway program: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("rendered program is not valid Go: %w", err)
	}
	return src, nil
}

// SwaggerDocument renders the merged swagger document with the metadata
// forwarding headers added to every POST operation. Keys are emitted in
// sorted order with two-space indentation so re-runs produce byte-identical
// documents.
func SwaggerDocument(prog *aggregate.Program, metadata []string) ([]byte, error) {
	doc := prog.Swagger
	for _, spec := range metadata {
		name, def := gateway.SplitHeaderSpec(spec)
		addMetadataParameter(doc, name, def)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode merged swagger: %w", err)
	}
	return append(raw, '\n'), nil
}

// GoMod renders the go.mod of the generated module, making the output
// subtree holding the rendered program and the staged bindings buildable as
// its own module. Dependency versions are left to the downstream build
// (go mod tidy) rather than pinned here.
func GoMod() []byte {
	return []byte("module " + descriptor.GeneratedModule + "\n\ngo 1.25.0\n")
}

func headerNames(metadata []string) []string {
	names := make([]string, 0, len(metadata))
	for _, spec := range metadata {
		name, _ := gateway.SplitHeaderSpec(spec)
		names = append(names, name)
	}
	return names
}

func outboundMode(t config.TLS) gateway.OutboundSecurity {
	return gateway.OutboundOptions{
		ProxyCert:        t.ProxyCert,
		MTLSCert:         t.ProxyMTLSCert,
		MTLSKey:          t.ProxyMTLSKey,
		CertHostname:     t.ProxyCertHostname,
		NoCertValidation: t.NoCertValidation,
	}.Security()
}
