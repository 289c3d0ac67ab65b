package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
)

// Plugin executables protoc needs on PATH, with install hints surfaced when
// one is missing.
var requiredTools = map[string]string{
	"protoc":                  "https://grpc.io/docs/protoc-installation/",
	"protoc-gen-go":           "google.golang.org/protobuf/cmd/protoc-gen-go",
	"protoc-gen-go-grpc":      "google.golang.org/grpc/cmd/protoc-gen-go-grpc",
	"protoc-gen-grpc-gateway": "github.com/grpc-ecosystem/grpc-gateway/v2/protoc-gen-grpc-gateway",
	"protoc-gen-openapiv2":    "github.com/grpc-ecosystem/grpc-gateway/v2/protoc-gen-openapiv2",
}

// Protoc is the production Generator. It stages the input protos (with the
// go_package option injected), writes the service and openapi configuration
// documents, and shells out to protoc with the go, go-grpc, grpc-gateway and
// openapiv2 plugins. protoc runs at most once per proto file; descriptors
// declared in the same file share the invocation and its swagger output.
//
// Protoc is safe for concurrent Generate calls.
type Protoc struct {
	// WorkingDir is the staging directory, exclusively owned by one run.
	WorkingDir string
	// NoJSONNames disables camelCase JSON field names in the swagger output.
	NoJSONNames bool
	// ExtraImportDirs are additional -I directories (e.g. GOPATH/pkg/mod).
	ExtraImportDirs []string

	serviceSpecPath string
	openapiSpecPath string

	mu    sync.Mutex
	files map[string]*fileResult
}

type fileResult struct {
	once    sync.Once
	swagger map[string]any
	err     error
}

// Check verifies that protoc and the required plugins are installed.
func (p *Protoc) Check() error {
	for tool, hint := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("missing required executable %q (install: %s)", tool, hint)
		}
	}
	return nil
}

// Prepare stages the descriptor set into the working directory: it writes
// service.json and openapi.json derived from the set and copies every input
// proto with the go_package option pointing into the generated module.
// Must be called before Generate.
func (p *Protoc) Prepare(ctx context.Context, set *descriptor.Set) error {
	p.files = make(map[string]*fileResult)

	p.serviceSpecPath = filepath.Join(p.WorkingDir, "service.json")
	if err := writeJSON(p.serviceSpecPath, BuildServiceSpec(set)); err != nil {
		return fmt.Errorf("write service spec: %w", err)
	}
	p.openapiSpecPath = filepath.Join(p.WorkingDir, "openapi.json")
	if err := writeJSON(p.openapiSpecPath, BuildOpenAPISpec(set)); err != nil {
		return fmt.Errorf("write openapi spec: %w", err)
	}

	for _, file := range set.Files {
		src, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("read proto %s: %w", file.Path, err)
		}
		staged := filepath.Join(p.WorkingDir, filepath.Base(file.Path))
		if err := os.WriteFile(staged, injectGoPackage(src), 0o644); err != nil {
			return fmt.Errorf("stage proto %s: %w", file.Path, err)
		}
	}
	return nil
}

// Generate runs protoc for the descriptor's file (once per file) and returns
// the artifact carrying the decoded swagger document. Failures wrap the
// underlying protoc error in GenerationFailedError and are not retried.
func (p *Protoc) Generate(ctx context.Context, desc *descriptor.ServiceDescriptor) (*Artifact, error) {
	p.mu.Lock()
	if p.files == nil {
		p.mu.Unlock()
		return nil, &GenerationFailedError{Descriptor: desc, Err: fmt.Errorf("generator not prepared")}
	}
	fr, ok := p.files[desc.ProtoPath]
	if !ok {
		fr = &fileResult{}
		p.files[desc.ProtoPath] = fr
	}
	p.mu.Unlock()

	fr.once.Do(func() {
		fr.swagger, fr.err = p.runFile(ctx, desc.ProtoPath)
	})
	if fr.err != nil {
		return nil, &GenerationFailedError{Descriptor: desc, Err: fr.err}
	}
	return &Artifact{
		Descriptor: desc,
		Swagger:    fr.swagger,
		BindingDir: p.WorkingDir,
	}, nil
}

func (p *Protoc) runFile(ctx context.Context, protoPath string) (map[string]any, error) {
	base := filepath.Base(protoPath)
	gatewayOpt := fmt.Sprintf("logtostderr=true,grpc_api_configuration=%s:%s", p.serviceSpecPath, p.WorkingDir)
	openapiOpt := "openapi_configuration=" + p.openapiSpecPath
	if p.NoJSONNames {
		openapiOpt += ",json_names_for_fields=false"
	}

	args := []string{"-I", p.WorkingDir}
	for _, dir := range p.ExtraImportDirs {
		args = append(args, "-I", dir)
	}
	args = append(args,
		"--go_out="+p.WorkingDir,
		"--go-grpc_out="+p.WorkingDir,
		"--grpc-gateway_out="+gatewayOpt,
		"--openapiv2_out="+gatewayOpt,
		"--openapiv2_opt="+openapiOpt,
		base,
	)

	zap.L().Debug("running protoc", zap.String("proto", base), zap.Strings("args", args))
	cmd := exec.CommandContext(ctx, "protoc", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("protoc %s: %w: %s", base, err, strings.TrimSpace(stderr.String()))
	}

	swaggerPath := filepath.Join(p.WorkingDir, strings.TrimSuffix(base, ".proto")+".swagger.json")
	raw, err := os.ReadFile(swaggerPath)
	if err != nil {
		return nil, fmt.Errorf("read swagger output: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode swagger output %s: %w", swaggerPath, err)
	}
	return doc, nil
}

// injectGoPackage rewrites a proto source so that its go_package option
// points into the generated module, dropping any pre-existing go_package
// option. The bindings of package foo.bar then import as
// grpc-gateway-wrapper/foo/bar.
func injectGoPackage(src []byte) []byte {
	var out []string
	for _, rawLine := range strings.Split(string(src), "\n") {
		line := strings.TrimSpace(rawLine)
		if strings.Contains(line, "go_package") {
			continue
		}
		out = append(out, rawLine)
		if strings.HasPrefix(line, "package") && strings.HasSuffix(line, ";") {
			fields := strings.Fields(strings.TrimSuffix(line, ";"))
			pkgPath := strings.ReplaceAll(fields[len(fields)-1], ".", "/")
			out = append(out, fmt.Sprintf("option go_package = %q;", descriptor.GeneratedModule+"/"+pkgPath))
		}
	}
	return []byte(strings.Join(out, "\n"))
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
