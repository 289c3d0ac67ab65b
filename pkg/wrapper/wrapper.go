// Package wrapper wires the generation pipeline together: descriptor
// loading, external generation, aggregation, template synthesis and output
// writing. A run is a pure function of its configuration; any stage failure
// aborts the run before anything is written to the output directory.
package wrapper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/shamank/grpc-gateway-wrapper/pkg/aggregate"
	"github.com/shamank/grpc-gateway-wrapper/pkg/config"
	"github.com/shamank/grpc-gateway-wrapper/pkg/descriptor"
	"github.com/shamank/grpc-gateway-wrapper/pkg/generator"
	"github.com/shamank/grpc-gateway-wrapper/pkg/output"
	"github.com/shamank/grpc-gateway-wrapper/pkg/render"
)

// init configures a default global zap logger. Applications may replace it
// with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Run executes a full generation run with the production protoc-backed
// generator. It validates the configuration, prepares the working directory,
// loads the descriptors and hands off to RunWith.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Debug {
		enableDebugLogging()
	}

	workDir, madeWorkDir, err := ensureWorkingDir(cfg.WorkingDir)
	if err != nil {
		return err
	}
	if madeWorkDir && !cfg.KeepWorkingDir {
		defer os.RemoveAll(workDir)
	}
	zap.L().Info("using working dir", zap.String("path", workDir))

	set, err := descriptor.Load(ctx, cfg.ProtoFiles)
	if err != nil {
		return err
	}

	protoc := &generator.Protoc{
		WorkingDir:      workDir,
		NoJSONNames:     cfg.NoJSONNames,
		ExtraImportDirs: moduleCacheDirs(),
	}
	if err := protoc.Check(); err != nil {
		return err
	}
	if err := protoc.Prepare(ctx, set); err != nil {
		return err
	}

	return RunWith(ctx, cfg, set, protoc)
}

// RunWith executes aggregation and synthesis over an already loaded
// descriptor set with a caller-supplied generator. This is the testable core:
// the generator can be any Generator implementation, including an in-memory
// fake.
func RunWith(ctx context.Context, cfg *config.Config, set *descriptor.Set, gen generator.Generator) error {
	artifacts, err := generator.GenerateAll(ctx, gen, set.Services, runtime.NumCPU())
	if err != nil {
		return err
	}

	prog, err := aggregate.Build(artifacts)
	if err != nil {
		return err
	}

	source, err := render.Program(prog, cfg)
	if err != nil {
		return err
	}
	swagger, err := render.SwaggerDocument(prog, cfg.Metadata)
	if err != nil {
		return err
	}

	// All validation and synthesis succeeded; only now touch the output dir.
	writer := output.NewWriter(cfg.OutputDir)
	if err := writer.AddSwaggerAssets(); err != nil {
		return err
	}
	writer.Add(output.SwaggerDocPath, swagger)
	writer.Add(output.GoModPath, render.GoMod())
	writer.Add(output.ProgramPath, source)
	if err := stageBindings(writer, artifacts); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	zap.L().Info("gateway generated",
		zap.Int("services", len(set.Services)),
		zap.String("output_dir", cfg.OutputDir))
	return nil
}

// stageBindings copies the generated binding sources from the generator's
// staging directories into the writer, so the flushed
// grpc-gateway-wrapper/ subtree compiles on its own after the working dir is
// cleaned up. Artifacts from the same staging directory are staged once.
func stageBindings(writer *output.Writer, artifacts []*generator.Artifact) error {
	staged := map[string]bool{}
	for _, artifact := range artifacts {
		dir := artifact.BindingDir
		if dir == "" || staged[dir] {
			continue
		}
		staged[dir] = true
		bindings := filepath.Join(dir, descriptor.GeneratedModule)
		if err := writer.AddTree(bindings, descriptor.GeneratedModule); err != nil {
			return fmt.Errorf("stage generated bindings: %w", err)
		}
	}
	return nil
}

func ensureWorkingDir(configured string) (dir string, made bool, err error) {
	if configured == "" {
		dir, err = os.MkdirTemp("", "gen_gateway_")
		if err != nil {
			return "", false, fmt.Errorf("create working dir: %w", err)
		}
		return dir, true, nil
	}
	info, err := os.Stat(configured)
	switch {
	case err == nil && !info.IsDir():
		return "", false, fmt.Errorf("invalid working dir: %s is not a directory", configured)
	case err == nil:
		return configured, false, nil
	default:
		if err := os.MkdirAll(configured, 0o755); err != nil {
			return "", false, fmt.Errorf("create working dir: %w", err)
		}
		return configured, true, nil
	}
}

// moduleCacheDirs returns the Go module cache as an extra protoc include
// path, matching how the generator plugins resolve well-known imports.
func moduleCacheDirs() []string {
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		return nil
	}
	return []string{filepath.Join(gopath, "pkg", "mod")}
}

func enableDebugLogging() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := c.Build()
	if err != nil {
		return
	}
	zap.ReplaceGlobals(logger)
}
