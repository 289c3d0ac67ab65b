package output

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_Flush(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.Add("grpc-gateway-wrapper/gateway.go", []byte("package main\n"))
	w.Add("swagger/combined.swagger.json", []byte("{}\n"))

	if entries, err := os.ReadDir(dir); err != nil || len(entries) != 0 {
		t.Fatalf("nothing may be written before Flush: %v, %v", entries, err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "grpc-gateway-wrapper", "gateway.go"))
	if err != nil {
		t.Fatalf("read flushed file: %v", err)
	}
	if string(got) != "package main\n" {
		t.Fatalf("unexpected content: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "swagger", "combined.swagger.json")); err != nil {
		t.Fatalf("swagger doc not written: %v", err)
	}
}

// TestWriter_OverwritesPreviousRun verifies that re-flushing replaces the
// prior run's files in place.
func TestWriter_OverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()

	w := NewWriter(dir)
	w.Add("file.txt", []byte("first"))
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	w = NewWriter(dir)
	w.Add("file.txt", []byte("second"))
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "file.txt"))
	if err != nil {
		t.Fatalf("read flushed file: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestWriter_ReplaceKeepsOrder(t *testing.T) {
	w := NewWriter(t.TempDir())
	w.Add("a.txt", []byte("one"))
	w.Add("b.txt", []byte("two"))
	w.Add("a.txt", []byte("three"))

	if len(w.order) != 2 {
		t.Fatalf("replacement must not duplicate the flush entry: %v", w.order)
	}
	if string(w.files["a.txt"]) != "three" {
		t.Fatalf("replacement content lost: %q", w.files["a.txt"])
	}
}

// TestWriter_AddTree verifies that a staged directory tree lands under the
// given prefix with its relative layout intact.
func TestWriter_AddTree(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sample"), 0o755); err != nil {
		t.Fatalf("prepare source tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "sample", "sample.pb.go"), []byte("package sample\n"), 0o644); err != nil {
		t.Fatalf("prepare source tree: %v", err)
	}

	dir := t.TempDir()
	w := NewWriter(dir)
	if err := w.AddTree(src, "grpc-gateway-wrapper"); err != nil {
		t.Fatalf("AddTree returned error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "grpc-gateway-wrapper", "sample", "sample.pb.go"))
	if err != nil {
		t.Fatalf("staged tree file not written: %v", err)
	}
	if string(got) != "package sample\n" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestWriter_AddTree_MissingRoot(t *testing.T) {
	w := NewWriter(t.TempDir())
	if err := w.AddTree(filepath.Join(t.TempDir(), "does-not-exist"), "x"); err == nil {
		t.Fatal("expected error for missing source root")
	}
}

func TestWriter_AddSwaggerAssets(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	if err := w.AddSwaggerAssets(); err != nil {
		t.Fatalf("AddSwaggerAssets returned error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "swagger", "index.html")); err != nil {
		t.Fatalf("swagger index not written: %v", err)
	}
}
