package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestValidate_AppliesDefaults verifies that Validate applies default values
// for OutputDir, Port and ProxyEndpoint when they are not explicitly set.
func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := &Config{
		ProtoFiles: []string{"sample.proto"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if cfg.OutputDir != "build" {
		t.Fatalf("unexpected OutputDir: %s", cfg.OutputDir)
	}
	if cfg.Port != 8080 {
		t.Fatalf("unexpected Port: %d", cfg.Port)
	}
	if cfg.ProxyEndpoint != "localhost:50051" {
		t.Fatalf("unexpected ProxyEndpoint: %s", cfg.ProxyEndpoint)
	}
}

// TestValidate_RequiresProtoFiles verifies that Validate returns an error
// when no proto files are provided.
func TestValidate_RequiresProtoFiles(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing proto files")
	}
}

func TestValidate_TLSCombinations(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLS
		wantErr bool
	}{
		{
			name: "plaintext",
			tls:  TLS{},
		},
		{
			name: "serve pair",
			tls:  TLS{ServeCert: "c.pem", ServeKey: "k.pem"},
		},
		{
			name:    "serve cert without key",
			tls:     TLS{ServeCert: "c.pem"},
			wantErr: true,
		},
		{
			name:    "serve key without cert",
			tls:     TLS{ServeKey: "k.pem"},
			wantErr: true,
		},
		{
			name:    "client CA without serve pair",
			tls:     TLS{ClientCA: "ca.pem"},
			wantErr: true,
		},
		{
			name: "inbound mutual TLS",
			tls:  TLS{ServeCert: "c.pem", ServeKey: "k.pem", ClientCA: "ca.pem"},
		},
		{
			name: "outbound mutual TLS",
			tls: TLS{
				ProxyCert:     "proxy.pem",
				ProxyMTLSCert: "mc.pem",
				ProxyMTLSKey:  "mk.pem",
			},
		},
		{
			name:    "mtls cert without key",
			tls:     TLS{ProxyCert: "proxy.pem", ProxyMTLSCert: "mc.pem"},
			wantErr: true,
		},
		{
			name:    "mtls pair without proxy cert",
			tls:     TLS{ProxyMTLSCert: "mc.pem", ProxyMTLSKey: "mk.pem"},
			wantErr: true,
		},
		{
			name:    "hostname override without proxy cert",
			tls:     TLS{ProxyCertHostname: "svc.internal"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ProtoFiles: []string{"sample.proto"}, TLS: tt.tls}
			err := cfg.Validate()
			if tt.wantErr {
				var tlsErr *TLSConfigError
				if !errors.As(err, &tlsErr) {
					t.Fatalf("expected TLSConfigError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
proto_files:
  - sample-service.proto
output_dir: out
metadata:
  - mm-model-id:default-model
tls:
  proxy_cert: proxy.pem
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if len(cfg.ProtoFiles) != 1 || cfg.ProtoFiles[0] != "sample-service.proto" {
		t.Fatalf("unexpected proto files: %v", cfg.ProtoFiles)
	}
	if cfg.OutputDir != "out" {
		t.Fatalf("unexpected output dir: %s", cfg.OutputDir)
	}
	if len(cfg.Metadata) != 1 || cfg.Metadata[0] != "mm-model-id:default-model" {
		t.Fatalf("unexpected metadata: %v", cfg.Metadata)
	}
	if cfg.TLS.ProxyCert != "proxy.pem" {
		t.Fatalf("unexpected proxy cert: %s", cfg.TLS.ProxyCert)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
