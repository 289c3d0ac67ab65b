package generator

import (
	"testing"

	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
)

func sampleSet() *descriptor.Set {
	return &descriptor.Set{
		Files: []descriptor.File{
			{
				Path:    "sample-service.proto",
				Package: "sample",
				Messages: []descriptor.Message{
					{
						FullName:    "sample.Request",
						Description: "The request message",
						Fields: []descriptor.Field{
							{Name: "name", Description: "Name of the caller"},
							{Name: "count"},
						},
					},
					{FullName: "sample.Response"},
				},
			},
		},
		Services: []*descriptor.ServiceDescriptor{
			{
				ProtoPath:   "sample-service.proto",
				Package:     "sample",
				Name:        "SampleService",
				ImportPath:  "grpc-gateway-wrapper/sample",
				ImportName:  "sample",
				Description: "This is a sample service",
				Methods: []descriptor.Method{
					{Name: "Greeting", Description: "Send a greeting"},
					{Name: "Farewell"},
				},
			},
		},
	}
}

func TestBuildServiceSpec(t *testing.T) {
	spec := BuildServiceSpec(sampleSet())

	if spec.Type != "google.api.Service" || spec.ConfigVersion != 3 {
		t.Fatalf("unexpected spec envelope: %+v", spec)
	}
	if len(spec.HTTP.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(spec.HTTP.Rules))
	}
	first := spec.HTTP.Rules[0]
	if first.Selector != "sample.SampleService.Greeting" {
		t.Fatalf("unexpected selector: %s", first.Selector)
	}
	if first.Post != "/v1/sample/SampleService/Greeting" {
		t.Fatalf("unexpected route: %s", first.Post)
	}
	if first.Body != "*" {
		t.Fatalf("unexpected body binding: %s", first.Body)
	}
}

func TestBuildOpenAPISpec(t *testing.T) {
	spec := BuildOpenAPISpec(sampleSet())
	opts := spec.OpenAPIOptions

	if len(opts.Service) != 1 || opts.Service[0].Service != "sample.SampleService" {
		t.Fatalf("unexpected service options: %+v", opts.Service)
	}
	if opts.Service[0].Option.Description != "This is a sample service" {
		t.Fatalf("unexpected service description: %q", opts.Service[0].Option.Description)
	}

	// Only the commented method gets an option.
	if len(opts.Method) != 1 || opts.Method[0].Method != "sample.SampleService.Greeting" {
		t.Fatalf("unexpected method options: %+v", opts.Method)
	}

	if len(opts.Message) != 1 || opts.Message[0].Message != "sample.Request" {
		t.Fatalf("unexpected message options: %+v", opts.Message)
	}
	if opts.Message[0].Option.JSONSchema.Description != "The request message" {
		t.Fatalf("unexpected message description: %+v", opts.Message[0].Option)
	}

	if len(opts.Field) != 1 || opts.Field[0].Field != "sample.Request.name" {
		t.Fatalf("unexpected field options: %+v", opts.Field)
	}
}
