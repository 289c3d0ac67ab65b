// Package generator adapts the external proto-to-gateway code generator
// (protoc with the grpc-gateway and openapiv2 plugins) behind a capability
// interface. The rest of the pipeline only sees opaque Artifact values, so
// it can be exercised against an in-memory fake without any
// external tooling installed.
package generator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
)

// Artifact is the captured output of one generator invocation for one
// service descriptor: the staged binding sources (referenced by directory,
// never parsed) and the decoded swagger document of the descriptor's file.
// Descriptors declared in the same proto file share one swagger document.
type Artifact struct {
	Descriptor *descriptor.ServiceDescriptor
	// Swagger is the decoded swagger 2.0 document emitted for the
	// descriptor's proto file.
	Swagger map[string]any
	// BindingDir is the staging directory holding the generated Go bindings
	// under <BindingDir>/grpc-gateway-wrapper/<package path>. The output
	// writer copies that subtree next to the rendered program; empty means
	// the generator produced no on-disk bindings.
	BindingDir string
}

// Generator is the capability boundary around the external code generator.
// Implementations must be safe for concurrent use: invocations for distinct
// descriptors may run in parallel.
type Generator interface {
	// Generate invokes the external generator for one descriptor and returns
	// the captured artifact. Failures are deterministic for a given input and
	// are never retried.
	Generate(ctx context.Context, desc *descriptor.ServiceDescriptor) (*Artifact, error)
}

// GenerationFailedError wraps an external generator failure with the
// originating descriptor.
type GenerationFailedError struct {
	Descriptor *descriptor.ServiceDescriptor
	Err        error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed for %s (%s): %v",
		e.Descriptor.FullName(), e.Descriptor.ProtoPath, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// GenerateAll runs the generator for every descriptor and returns the
// artifacts in descriptor order. Invocations run concurrently up to
// parallelism (a value < 1 means sequential), but the result order is always
// the input order: aggregation downstream is order-sensitive. The first
// failure cancels the remaining invocations and is returned as is.
func GenerateAll(ctx context.Context, gen Generator, descs []*descriptor.ServiceDescriptor, parallelism int) ([]*Artifact, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	artifacts := make([]*Artifact, len(descs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, desc := range descs {
		i, desc := i, desc
		g.Go(func() error {
			artifact, err := gen.Generate(ctx, desc)
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
