package aggregate

import (
	"errors"
	"testing"

	"github.com/shamank/grpc-gateway-wrapper/pkg/generator"
)

func withSwagger(a *generator.Artifact, doc map[string]any) *generator.Artifact {
	a.Swagger = doc
	return a
}

func stringSchema(desc string) map[string]any {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}
	if desc != "" {
		schema["description"] = desc
	}
	return schema
}

func TestBuild_SwaggerMerge(t *testing.T) {
	a := withSwagger(artifact("a.proto", "sample", "SampleService", "Greeting"), map[string]any{
		"swagger": "2.0",
		"paths": map[string]any{
			"/v1/sample/SampleService/Greeting": map[string]any{
				"post": map[string]any{"operationId": "SampleService_Greeting"},
			},
		},
		"definitions": map[string]any{
			"sampleRequest":  stringSchema(""),
			"sampleResponse": stringSchema(""),
		},
	})
	b := withSwagger(artifact("b.proto", "other", "OtherService", "Ping"), map[string]any{
		"swagger": "2.0",
		"paths": map[string]any{
			"/v1/other/OtherService/Ping": map[string]any{
				"post": map[string]any{"operationId": "OtherService_Ping"},
			},
		},
		"definitions": map[string]any{
			"otherPingRequest": stringSchema(""),
		},
	})

	prog, err := Build([]*generator.Artifact{a, b})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	paths := prog.Swagger["paths"].(map[string]any)
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	defs := prog.Swagger["definitions"].(map[string]any)
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	if prog.Swagger["swagger"] != "2.0" {
		t.Fatalf("swagger version lost: %v", prog.Swagger["swagger"])
	}
}

// TestBuild_SwaggerSharedDefinition verifies that an identical definition
// declared by two services (a shared well-known type) merges without error
// into a single entry.
func TestBuild_SwaggerSharedDefinition(t *testing.T) {
	a := withSwagger(artifact("a.proto", "sample", "SampleService", "Greeting"), map[string]any{
		"definitions": map[string]any{"protobufAny": stringSchema("")},
	})
	b := withSwagger(artifact("b.proto", "other", "OtherService", "Ping"), map[string]any{
		"definitions": map[string]any{"protobufAny": stringSchema("")},
	})

	prog, err := Build([]*generator.Artifact{a, b})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defs := prog.Swagger["definitions"].(map[string]any)
	if len(defs) != 1 {
		t.Fatalf("expected exactly 1 definition, got %d", len(defs))
	}
}

func TestBuild_SwaggerDefinitionConflict(t *testing.T) {
	a := withSwagger(artifact("a.proto", "sample", "SampleService", "Greeting"), map[string]any{
		"definitions": map[string]any{"Shared": stringSchema("")},
	})
	conflicting := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "integer"},
		},
	}
	b := withSwagger(artifact("b.proto", "other", "OtherService", "Ping"), map[string]any{
		"definitions": map[string]any{"Shared": conflicting},
	})

	_, err := Build([]*generator.Artifact{a, b})
	var conflict *SwaggerMergeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SwaggerMergeConflictError, got %v", err)
	}
	if conflict.Key != "Shared" {
		t.Fatalf("unexpected conflict key: %s", conflict.Key)
	}
	if conflict.First != "sample.SampleService" || conflict.Second != "other.OtherService" {
		t.Fatalf("conflict does not name both claimants: %+v", conflict)
	}
}

// TestBuild_SwaggerDescriptionOnlyDiff verifies that a description-only
// difference between otherwise identical schemas is not fatal; the last
// writer's text wins.
func TestBuild_SwaggerDescriptionOnlyDiff(t *testing.T) {
	a := withSwagger(artifact("a.proto", "sample", "SampleService", "Greeting"), map[string]any{
		"definitions": map[string]any{"Shared": stringSchema("first text")},
	})
	b := withSwagger(artifact("b.proto", "other", "OtherService", "Ping"), map[string]any{
		"definitions": map[string]any{"Shared": stringSchema("second text")},
	})

	prog, err := Build([]*generator.Artifact{a, b})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	shared := prog.Swagger["definitions"].(map[string]any)["Shared"].(map[string]any)
	if shared["description"] != "second text" {
		t.Fatalf("expected last writer to win, got %v", shared["description"])
	}
}

func TestBuild_SwaggerPathConflict(t *testing.T) {
	// Distinct services emitting the same path+method with differing
	// operations. Route-table detection is bypassed by leaving Methods empty.
	a := artifact("a.proto", "sample", "SampleService")
	a.Swagger = map[string]any{
		"paths": map[string]any{
			"/v1/shared/Do": map[string]any{
				"post": map[string]any{"operationId": "SampleService_Do"},
			},
		},
	}
	b := artifact("b.proto", "other", "OtherService")
	b.Swagger = map[string]any{
		"paths": map[string]any{
			"/v1/shared/Do": map[string]any{
				"post": map[string]any{"operationId": "OtherService_Do"},
			},
		},
	}

	_, err := Build([]*generator.Artifact{a, b})
	var conflict *RouteConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected RouteConflictError, got %v", err)
	}
	if conflict.Path != "/v1/shared/Do" || conflict.Method != "POST" {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
}

// TestBuild_SwaggerSameFileOnce verifies that two services declared in the
// same proto file, which share one swagger document, do not trip conflict
// detection on their shared content.
func TestBuild_SwaggerSameFileOnce(t *testing.T) {
	doc := map[string]any{
		"paths": map[string]any{
			"/v1/sample/FirstService/One": map[string]any{
				"post": map[string]any{"operationId": "FirstService_One"},
			},
			"/v1/sample/SecondService/Two": map[string]any{
				"post": map[string]any{"operationId": "SecondService_Two"},
			},
		},
		"definitions": map[string]any{"sampleShared": stringSchema("")},
	}
	a := withSwagger(artifact("a.proto", "sample", "FirstService", "One"), doc)
	b := withSwagger(artifact("a.proto", "sample", "SecondService", "Two"), doc)

	prog, err := Build([]*generator.Artifact{a, b})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	paths := prog.Swagger["paths"].(map[string]any)
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
}
