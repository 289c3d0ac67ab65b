package descriptor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bufbuild/protocompile"
	"go.uber.org/zap"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// GeneratedModule is the module name of the rendered gateway program. The
// per-service bindings emitted by the external generator are importable under
// GeneratedModule/<package path>.
const GeneratedModule = "grpc-gateway-wrapper"

// ServiceDescriptor identifies one service declared by one input proto file,
// together with the import path its generated bindings will live under.
// Descriptors are immutable once loaded.
type ServiceDescriptor struct {
	// ProtoPath is the input file that declared the service.
	ProtoPath string
	// Package is the proto package, e.g. "foo.bar".
	Package string
	// Name is the simple service name, e.g. "SampleService".
	Name string
	// ImportPath is the Go import path of the generated bindings,
	// e.g. "grpc-gateway-wrapper/foo/bar".
	ImportPath string
	// ImportName is the default import identifier derived from the last
	// package segment, e.g. "bar". The aggregation engine may disambiguate it.
	ImportName string
	// Description is the consolidated leading comment of the service.
	Description string
	// Methods lists the service's rpcs in declaration order.
	Methods []Method
}

// FullName returns the fully qualified service name, e.g. "foo.bar.SampleService".
func (d *ServiceDescriptor) FullName() string {
	return d.Package + "." + d.Name
}

// RoutePath returns the HTTP route the gateway exposes for one of the
// service's rpcs: /v1/<package>/<Service>/<Method>.
func (d *ServiceDescriptor) RoutePath(method string) string {
	return "/v1/" + d.Package + "/" + d.Name + "/" + method
}

// Method is one rpc of a service.
type Method struct {
	Name        string
	Description string
}

// Message describes a message type declared by an input file, used to seed
// the openapi configuration with comment-derived descriptions.
type Message struct {
	// FullName is the fully qualified message name, e.g. "foo.bar.Request".
	FullName    string
	Description string
	Fields      []Field
}

// Field is one field of a message.
type Field struct {
	Name        string
	Description string
}

// File is the parsed view of one input proto file.
type File struct {
	Path     string
	Package  string
	Messages []Message
}

// Set is the ordered result of loading a batch of proto files. Services
// preserves input file order, then declaration order within a file.
type Set struct {
	Files    []File
	Services []*ServiceDescriptor
}

// Load compiles the given proto files in input order and extracts their
// service descriptors. It fails with InvalidProtoError when a file cannot be
// compiled, declares no package, or declares zero services, and with
// DuplicateServiceError when two files declare the same (package, service)
// pair. No partial result is returned on error.
func Load(ctx context.Context, protoFiles []string) (*Set, error) {
	// Files are compiled and later staged by base name, so two distinct
	// inputs sharing one base name would shadow each other.
	byBase := map[string]string{}
	for _, path := range protoFiles {
		base := filepath.Base(path)
		if prev, ok := byBase[base]; ok && prev != path {
			return nil, &InvalidProtoError{
				Path: path,
				Err:  fmt.Errorf("file name %s collides with %s; input files must have unique base names", base, prev),
			}
		}
		byBase[base] = path
	}

	compiler := newCompiler(protoFiles)

	set := &Set{}
	seen := map[string]*ServiceDescriptor{}
	for _, path := range protoFiles {
		zap.L().Debug("parsing proto file", zap.String("path", path))

		fds, err := compiler.Compile(ctx, filepath.Base(path))
		if err != nil {
			return nil, &InvalidProtoError{Path: path, Err: err}
		}
		fd := fds[0]

		pkg := string(fd.Package())
		if pkg == "" {
			return nil, &InvalidProtoError{Path: path, Err: fmt.Errorf("missing package declaration")}
		}
		if fd.Services().Len() == 0 {
			return nil, &InvalidProtoError{Path: path, Err: fmt.Errorf("no services declared")}
		}

		file := File{Path: path, Package: pkg}
		collectMessages(fd, fd.Messages(), &file.Messages)
		set.Files = append(set.Files, file)

		for i := 0; i < fd.Services().Len(); i++ {
			svc := fd.Services().Get(i)
			desc := &ServiceDescriptor{
				ProtoPath:   path,
				Package:     pkg,
				Name:        string(svc.Name()),
				ImportPath:  GeneratedModule + "/" + strings.ReplaceAll(pkg, ".", "/"),
				ImportName:  lastSegment(pkg),
				Description: leadingComment(fd, svc),
			}
			for j := 0; j < svc.Methods().Len(); j++ {
				m := svc.Methods().Get(j)
				desc.Methods = append(desc.Methods, Method{
					Name:        string(m.Name()),
					Description: leadingComment(fd, m),
				})
			}

			if prev, ok := seen[desc.FullName()]; ok {
				return nil, &DuplicateServiceError{
					Package:   pkg,
					Service:   desc.Name,
					FirstPath: prev.ProtoPath,
					OtherPath: path,
				}
			}
			seen[desc.FullName()] = desc
			set.Services = append(set.Services, desc)
		}
	}
	return set, nil
}

// newCompiler builds a compiler that resolves the input files (by base name)
// from their parent directories, mirroring protoc's -I semantics, with the
// well-known imports available.
func newCompiler(protoFiles []string) *protocompile.Compiler {
	var importPaths []string
	dirSeen := map[string]bool{}
	for _, path := range protoFiles {
		dir := filepath.Dir(path)
		if !dirSeen[dir] {
			dirSeen[dir] = true
			importPaths = append(importPaths, dir)
		}
	}

	resolver := protocompile.WithStandardImports(&protocompile.SourceResolver{
		ImportPaths: importPaths,
	})
	return &protocompile.Compiler{
		Resolver:       resolver,
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
}

func collectMessages(fd protoreflect.FileDescriptor, msgs protoreflect.MessageDescriptors, out *[]Message) {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if md.IsMapEntry() {
			continue
		}
		msg := Message{
			FullName:    string(md.FullName()),
			Description: leadingComment(fd, md),
		}
		for j := 0; j < md.Fields().Len(); j++ {
			f := md.Fields().Get(j)
			msg.Fields = append(msg.Fields, Field{
				Name:        string(f.Name()),
				Description: leadingComment(fd, f),
			})
		}
		*out = append(*out, msg)
		collectMessages(fd, md.Messages(), out)
	}
}

// leadingComment consolidates the leading comment of a declaration into a
// single string, stripping the single space protoc-style comments carry after
// the comment marker.
func leadingComment(fd protoreflect.FileDescriptor, d protoreflect.Descriptor) string {
	loc := fd.SourceLocations().ByDescriptor(d)
	raw := loc.LeadingComments
	if raw == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(raw, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func lastSegment(pkg string) string {
	parts := strings.Split(pkg, ".")
	return parts[len(parts)-1]
}
