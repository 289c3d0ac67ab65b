package generator

import (
	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
)

// ServiceSpec is the google.api.Service configuration handed to the
// grpc-gateway plugin. It maps every rpc onto a POST route of the form
// /v1/<package>/<Service>/<Method> with the whole request body bound to the
// rpc's request message.
//
// Ref: https://cloud.google.com/endpoints/docs/grpc-service-config/reference/rpc/google.api
type ServiceSpec struct {
	Type          string    `json:"type"`
	ConfigVersion int       `json:"config_version"`
	HTTP          HTTPRules `json:"http"`
}

// HTTPRules wraps the rule list of a ServiceSpec.
type HTTPRules struct {
	Rules []HTTPRule `json:"rules"`
}

// HTTPRule binds one fully qualified rpc selector to one POST route.
type HTTPRule struct {
	Selector string `json:"selector"`
	Post     string `json:"post"`
	Body     string `json:"body"`
}

// BuildServiceSpec derives the gateway HTTP rules from the loaded descriptor
// set, preserving descriptor order.
func BuildServiceSpec(set *descriptor.Set) *ServiceSpec {
	spec := &ServiceSpec{
		Type:          "google.api.Service",
		ConfigVersion: 3,
		HTTP:          HTTPRules{Rules: []HTTPRule{}},
	}
	for _, desc := range set.Services {
		for _, m := range desc.Methods {
			spec.HTTP.Rules = append(spec.HTTP.Rules, HTTPRule{
				Selector: desc.FullName() + "." + m.Name,
				Post:     desc.RoutePath(m.Name),
				Body:     "*",
			})
		}
	}
	return spec
}

// OpenAPISpec is the openapiv2 plugin configuration carrying comment-derived
// descriptions for services, methods, messages and fields.
//
// Ref: https://github.com/grpc-ecosystem/grpc-gateway/blob/master/docs/docs/mapping/grpc_api_configuration.md
type OpenAPISpec struct {
	OpenAPIOptions OpenAPIOptions `json:"openapiOptions"`
}

// OpenAPIOptions groups the per-element description options.
type OpenAPIOptions struct {
	Service []ServiceOption `json:"service,omitempty"`
	Method  []MethodOption  `json:"method,omitempty"`
	Message []MessageOption `json:"message,omitempty"`
	Field   []FieldOption   `json:"field,omitempty"`
}

// ServiceOption attaches a description to a fully qualified service.
type ServiceOption struct {
	Service string            `json:"service"`
	Option  DescriptionOption `json:"option"`
}

// MethodOption attaches a description to a fully qualified rpc.
type MethodOption struct {
	Method string            `json:"method"`
	Option DescriptionOption `json:"option"`
}

// MessageOption attaches a json_schema description to a fully qualified
// message.
type MessageOption struct {
	Message string           `json:"message"`
	Option  JSONSchemaOption `json:"option"`
}

// FieldOption attaches a description to a fully qualified field.
type FieldOption struct {
	Field  string            `json:"field"`
	Option DescriptionOption `json:"option"`
}

// DescriptionOption is a bare description value.
type DescriptionOption struct {
	Description string `json:"description"`
}

// JSONSchemaOption nests a description under json_schema, as the openapiv2
// message option requires.
type JSONSchemaOption struct {
	JSONSchema DescriptionOption `json:"json_schema"`
}

// BuildOpenAPISpec collects the proto comments of the loaded set into the
// openapiv2 configuration. Elements without comments are omitted.
func BuildOpenAPISpec(set *descriptor.Set) *OpenAPISpec {
	spec := &OpenAPISpec{}
	opts := &spec.OpenAPIOptions

	for _, file := range set.Files {
		for _, msg := range file.Messages {
			if msg.Description != "" {
				opts.Message = append(opts.Message, MessageOption{
					Message: msg.FullName,
					Option:  JSONSchemaOption{JSONSchema: DescriptionOption{Description: msg.Description}},
				})
			}
			for _, field := range msg.Fields {
				if field.Description != "" {
					opts.Field = append(opts.Field, FieldOption{
						Field:  msg.FullName + "." + field.Name,
						Option: DescriptionOption{Description: field.Description},
					})
				}
			}
		}
	}
	for _, desc := range set.Services {
		if desc.Description != "" {
			opts.Service = append(opts.Service, ServiceOption{
				Service: desc.FullName(),
				Option:  DescriptionOption{Description: desc.Description},
			})
		}
		for _, m := range desc.Methods {
			if m.Description != "" {
				opts.Method = append(opts.Method, MethodOption{
					Method: desc.FullName() + "." + m.Name,
					Option: DescriptionOption{Description: m.Description},
				})
			}
		}
	}
	return spec
}
