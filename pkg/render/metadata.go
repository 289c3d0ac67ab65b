package render

// addMetadataParameter appends a grpc-metadata-<name> header parameter to
// every POST operation in the document, advertising the forwarded gRPC
// metadata field in the served API documentation.
func addMetadataParameter(doc map[string]any, name, def string) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	header := map[string]any{
		"in":   "header",
		"name": "grpc-metadata-" + name,
		"schema": map[string]any{
			"type":    "string",
			"default": def,
		},
	}
	for _, rawOps := range paths {
		ops, ok := rawOps.(map[string]any)
		if !ok {
			continue
		}
		post, ok := ops["post"].(map[string]any)
		if !ok {
			continue
		}
		params, _ := post["parameters"].([]any)
		post["parameters"] = append(params, header)
	}
}
