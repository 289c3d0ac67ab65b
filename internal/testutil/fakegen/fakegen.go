// Package fakegen provides an in-memory Generator for pipeline tests. It
// synthesizes a swagger document per proto file in the shape the real
// openapiv2 plugin emits, without invoking any external tool.
package fakegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
	"github.com/shamank/grpc-gateway-wrapper/pkg/generator"
)

// Fake is an in-memory Generator. Descriptors from the same proto file share
// one swagger document, mirroring the per-file output of the real generator.
// Overrides and failures can be installed per proto path.
type Fake struct {
	mu sync.Mutex
	// Docs overrides the synthesized swagger document for a proto path.
	Docs map[string]map[string]any
	// Fail makes Generate fail for the given proto paths.
	Fail map[string]error
	// Calls counts Generate invocations per descriptor full name.
	Calls map[string]int
	// BindingRoot, when set, makes Generate write a stub binding source per
	// descriptor under <BindingRoot>/<import path>/ and report BindingRoot as
	// the artifact's BindingDir. Left empty the artifacts carry no bindings.
	BindingRoot string

	perFile map[string]map[string]any
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Docs:    map[string]map[string]any{},
		Fail:    map[string]error{},
		Calls:   map[string]int{},
		perFile: map[string]map[string]any{},
	}
}

// Generate implements generator.Generator.
func (f *Fake) Generate(_ context.Context, desc *descriptor.ServiceDescriptor) (*generator.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls[desc.FullName()]++
	if err, ok := f.Fail[desc.ProtoPath]; ok {
		return nil, &generator.GenerationFailedError{Descriptor: desc, Err: err}
	}

	doc, ok := f.perFile[desc.ProtoPath]
	if !ok {
		if override, has := f.Docs[desc.ProtoPath]; has {
			doc = override
		} else {
			doc = synthesizeDoc(desc)
		}
		f.perFile[desc.ProtoPath] = doc
	}

	bindingDir := ""
	if f.BindingRoot != "" {
		if err := f.writeBindingStub(desc); err != nil {
			return nil, &generator.GenerationFailedError{Descriptor: desc, Err: err}
		}
		bindingDir = f.BindingRoot
	}
	return &generator.Artifact{
		Descriptor: desc,
		Swagger:    doc,
		BindingDir: bindingDir,
	}, nil
}

// writeBindingStub drops a minimal Go source at the descriptor's binding
// import path, standing in for the real plugin output.
func (f *Fake) writeBindingStub(desc *descriptor.ServiceDescriptor) error {
	dir := filepath.Join(f.BindingRoot, filepath.FromSlash(desc.ImportPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	stub := fmt.Sprintf("package %s\n", desc.ImportName)
	name := strings.TrimSuffix(filepath.Base(desc.ProtoPath), ".proto") + ".pb.go"
	return os.WriteFile(filepath.Join(dir, name), []byte(stub), 0o644)
}

// synthesizeDoc builds a minimal swagger 2.0 document for the descriptor's
// service: one POST path per rpc plus request/response object definitions.
func synthesizeDoc(desc *descriptor.ServiceDescriptor) map[string]any {
	paths := map[string]any{}
	for _, m := range desc.Methods {
		paths[desc.RoutePath(m.Name)] = map[string]any{
			"post": map[string]any{
				"operationId": fmt.Sprintf("%s_%s", desc.Name, m.Name),
				"responses":   map[string]any{"200": map[string]any{"description": "A successful response."}},
				"tags":        []any{desc.Name},
			},
		}
	}
	return map[string]any{
		"swagger": "2.0",
		"info":    map[string]any{"title": desc.ProtoPath, "version": "version not set"},
		"paths":   paths,
		"definitions": map[string]any{
			desc.ImportName + "Request": map[string]any{
				"type":       "object",
				"properties": map[string]any{"name": map[string]any{"type": "string"}},
			},
			desc.ImportName + "Response": map[string]any{
				"type":       "object",
				"properties": map[string]any{"greeting": map[string]any{"type": "string"}},
			},
		},
	}
}
