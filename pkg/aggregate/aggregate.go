// Package aggregate merges the per-service generation artifacts into one
// ordered, deduplicated program description: unique import aliases, a unique
// registration list, a conflict-checked route table and a merged swagger
// document. Everything is derived strictly in input order so repeated runs
// over the same inputs produce byte-identical output downstream.
package aggregate

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/shamank/grpc-gateway-wrapper/pkg/generator"
)

// Import is one entry of the rendered import block.
type Import struct {
	Alias string
	Path  string
}

// Registration is one entry of the rendered registration block: the handler
// registration of one service through its package's import alias.
type Registration struct {
	Alias   string
	Service string
}

// Program is the aggregation result, consumed exactly once by the template
// synthesizer.
type Program struct {
	Imports       []Import
	Registrations []Registration
	Swagger       map[string]any
}

// Build reduces the ordered artifact list into a Program. It fails with
// RouteConflictError when two services claim the same path+method and with
// SwaggerMergeConflictError when two services declare the same definition key
// with structurally different schemas. Failure is whole-run: no partial
// Program is ever returned.
func Build(artifacts []*generator.Artifact) (*Program, error) {
	prog := &Program{}

	// Import aliasing: identity where the last package segment is unique,
	// first-seen suffix disambiguation (alias2, alias3, ...) otherwise.
	aliasByPath := map[string]string{}
	pathByAlias := map[string]string{}
	for _, artifact := range artifacts {
		desc := artifact.Descriptor
		if _, ok := aliasByPath[desc.ImportPath]; ok {
			continue
		}
		alias := desc.ImportName
		for n := 2; ; n++ {
			taken, ok := pathByAlias[alias]
			if !ok || taken == desc.ImportPath {
				break
			}
			alias = desc.ImportName + strconv.Itoa(n)
		}
		aliasByPath[desc.ImportPath] = alias
		pathByAlias[alias] = desc.ImportPath
		prog.Imports = append(prog.Imports, Import{Alias: alias, Path: desc.ImportPath})
		zap.L().Debug("assigned import alias",
			zap.String("path", desc.ImportPath), zap.String("alias", alias))
	}

	// Registration list: one statement per artifact, in input order. The
	// rendered program registers routes with the multiplexer in this order
	// and first-registered routes win on pattern overlap.
	for _, artifact := range artifacts {
		desc := artifact.Descriptor
		prog.Registrations = append(prog.Registrations, Registration{
			Alias:   aliasByPath[desc.ImportPath],
			Service: desc.Name,
		})
	}

	// Route table: every rpc's POST route must be claimed by exactly one
	// service.
	type claim struct{ service string }
	routes := map[string]claim{}
	for _, artifact := range artifacts {
		desc := artifact.Descriptor
		for _, m := range desc.Methods {
			route := "POST " + desc.RoutePath(m.Name)
			if prev, ok := routes[route]; ok {
				return nil, &RouteConflictError{
					Path:   desc.RoutePath(m.Name),
					Method: "POST",
					First:  prev.service,
					Second: desc.FullName(),
				}
			}
			routes[route] = claim{service: desc.FullName()}
		}
	}

	swagger, err := mergeSwagger(artifacts)
	if err != nil {
		return nil, err
	}
	prog.Swagger = swagger

	return prog, nil
}
