// Package output persists the synthesized source tree. Files are collected
// in memory first and only flushed once the whole pipeline has succeeded;
// each file is written via a temp file and rename so a failing run never
// leaves a previously successful output directory half-written.
package output

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Static assets served by the rendered program under /swagger/, alongside
// the merged document.
//
//go:embed assets/swagger
var swaggerAssets embed.FS

// SwaggerDocPath is where the merged swagger document lands, relative to the
// output directory.
const SwaggerDocPath = "swagger/combined.swagger.json"

// ProgramPath is where the rendered gateway source lands, relative to the
// output directory.
const ProgramPath = "grpc-gateway-wrapper/gateway.go"

// GoModPath is where the generated module's go.mod lands, relative to the
// output directory. Together with ProgramPath and the staged bindings it
// makes the grpc-gateway-wrapper/ subtree a self-contained module.
const GoModPath = "grpc-gateway-wrapper/go.mod"

// Writer accumulates rendered files and flushes them in one pass.
type Writer struct {
	dir   string
	order []string
	files map[string][]byte
}

// NewWriter returns a Writer rooted at the output directory. Nothing touches
// the filesystem until Flush.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, files: map[string][]byte{}}
}

// Add stages one file under the output directory. Re-adding a path replaces
// its content but keeps its original position in the flush order.
func (w *Writer) Add(relPath string, content []byte) {
	if _, ok := w.files[relPath]; !ok {
		w.order = append(w.order, relPath)
	}
	w.files[relPath] = content
}

// AddTree stages every file under srcRoot at relPrefix/<path relative to
// srcRoot>, in walk order.
func (w *Writer) AddTree(srcRoot, relPrefix string) error {
	return filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		w.Add(filepath.Join(relPrefix, rel), content)
		return nil
	})
}

// AddSwaggerAssets stages the embedded swagger-UI serve assets under
// swagger/.
func (w *Writer) AddSwaggerAssets() error {
	return fs.WalkDir(swaggerAssets, "assets/swagger", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, err := swaggerAssets.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read embedded asset %s: %w", path, err)
		}
		rel, err := filepath.Rel("assets", path)
		if err != nil {
			return err
		}
		w.Add(rel, content)
		return nil
	})
}

// Flush writes all staged files under the output directory in staging order.
// Each file is written to a temp sibling and renamed into place, so an
// existing file from a previous run is either fully replaced or untouched.
func (w *Writer) Flush() error {
	for _, rel := range w.order {
		dst := filepath.Join(w.dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create output dir for %s: %w", rel, err)
		}
		tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp*")
		if err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
		_, werr := tmp.Write(w.files[rel])
		cerr := tmp.Close()
		if werr != nil || cerr != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("write %s: %w", rel, firstErr(werr, cerr))
		}
		if err := os.Rename(tmp.Name(), dst); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("place %s: %w", rel, err)
		}
		zap.L().Debug("wrote output file", zap.String("path", dst))
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
