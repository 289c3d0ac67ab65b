package aggregate

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/shamank/grpc-gateway-wrapper/pkg/generator"
)

// mergeSwagger unions the per-file swagger documents into one. Descriptors
// declared in the same proto file share one document, which is merged exactly
// once. Within "definitions" an identical redeclaration (a shared well-known
// type) merges silently and a description-only difference is last-writer-wins;
// a structural difference is fatal. Within "paths" a duplicate path+method
// with a differing operation is fatal. All other sections follow plain
// deep-merge, last writer wins.
func mergeSwagger(artifacts []*generator.Artifact) (map[string]any, error) {
	merged := map[string]any{}
	defOrigin := map[string]string{}
	opOrigin := map[string]string{}

	seen := map[uintptr]bool{}
	for _, artifact := range artifacts {
		if artifact.Swagger == nil {
			continue
		}
		ptr := reflect.ValueOf(artifact.Swagger).Pointer()
		if seen[ptr] {
			continue
		}
		seen[ptr] = true

		origin := artifact.Descriptor.FullName()
		zap.L().Debug("merging swagger document", zap.String("source", origin))
		if err := mergeDoc(merged, artifact.Swagger, origin, defOrigin, opOrigin); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func mergeDoc(dst, src map[string]any, origin string, defOrigin, opOrigin map[string]string) error {
	for key, value := range src {
		switch key {
		case "definitions":
			if err := mergeDefinitions(section(dst, key), asMap(value), origin, defOrigin); err != nil {
				return err
			}
		case "paths":
			if err := mergePaths(section(dst, key), asMap(value), origin, opOrigin); err != nil {
				return err
			}
		default:
			mergeLoose(dst, key, value)
		}
	}
	return nil
}

func mergeDefinitions(dst, src map[string]any, origin string, defOrigin map[string]string) error {
	for name, schema := range src {
		existing, ok := dst[name]
		if !ok {
			dst[name] = schema
			defOrigin[name] = origin
			continue
		}
		if !structurallyEqual(existing, schema) {
			return &SwaggerMergeConflictError{Key: name, First: defOrigin[name], Second: origin}
		}
		// Same structure; newer descriptive text wins.
		dst[name] = schema
	}
	return nil
}

func mergePaths(dst, src map[string]any, origin string, opOrigin map[string]string) error {
	for path, rawOps := range src {
		existing, ok := dst[path]
		if !ok {
			dst[path] = rawOps
			for method := range asMap(rawOps) {
				opOrigin[method+" "+path] = origin
			}
			continue
		}
		dstOps := asMap(existing)
		for method, op := range asMap(rawOps) {
			prev, claimed := dstOps[method]
			if !claimed {
				dstOps[method] = op
				opOrigin[method+" "+path] = origin
				continue
			}
			if !reflect.DeepEqual(prev, op) {
				return &RouteConflictError{
					Path:   path,
					Method: strings.ToUpper(method),
					First:  opOrigin[method+" "+path],
					Second: origin,
				}
			}
		}
	}
	return nil
}

// mergeLoose is the permissive deep merge applied outside definitions/paths:
// maps recurse, everything else is overwritten by the newcomer.
func mergeLoose(dst map[string]any, key string, value any) {
	srcMap, srcIsMap := value.(map[string]any)
	dstMap, dstIsMap := dst[key].(map[string]any)
	if srcIsMap && dstIsMap {
		for k, v := range srcMap {
			mergeLoose(dstMap, k, v)
		}
		return
	}
	dst[key] = value
}

// structurallyEqual compares two decoded JSON values ignoring descriptive
// text ("description" and "title" map entries).
func structurallyEqual(a, b any) bool {
	aMap, aOK := a.(map[string]any)
	bMap, bOK := b.(map[string]any)
	if aOK != bOK {
		return false
	}
	if aOK {
		keys := map[string]bool{}
		for k := range aMap {
			keys[k] = true
		}
		for k := range bMap {
			keys[k] = true
		}
		for k := range keys {
			if k == "description" || k == "title" {
				continue
			}
			av, aHas := aMap[k]
			bv, bHas := bMap[k]
			if aHas != bHas || !structurallyEqual(av, bv) {
				return false
			}
		}
		return true
	}

	aSlice, aOK := a.([]any)
	bSlice, bOK := b.([]any)
	if aOK != bOK {
		return false
	}
	if aOK {
		if len(aSlice) != len(bSlice) {
			return false
		}
		for i := range aSlice {
			if !structurallyEqual(aSlice[i], bSlice[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func section(doc map[string]any, key string) map[string]any {
	m, ok := doc[key].(map[string]any)
	if !ok {
		m = map[string]any{}
		doc[key] = m
	}
	return m
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
