package gateway

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// OutboundSecurity enumerates the transport security modes of the channel to
// the proxied gRPC backend.
type OutboundSecurity int

const (
	// OutboundNone uses no transport security. Legacy default kept for
	// backward compatibility; requires explicit opt-in at deploy time.
	OutboundNone OutboundSecurity = iota
	// OutboundTLS authenticates the backend with a configured certificate.
	OutboundTLS
	// OutboundMutualTLS additionally presents a client certificate.
	OutboundMutualTLS
	// OutboundSkipVerify uses TLS with peer verification disabled.
	// Explicitly insecure.
	OutboundSkipVerify
)

func (s OutboundSecurity) String() string {
	switch s {
	case OutboundNone:
		return "none"
	case OutboundTLS:
		return "tls"
	case OutboundMutualTLS:
		return "mutual-tls"
	case OutboundSkipVerify:
		return "tls-skip-verify"
	}
	return "unknown"
}

// OutboundOptions carries the certificate material for the proxied channel.
// All certificate fields are PEM file paths.
type OutboundOptions struct {
	// ProxyCert is the CA or server certificate used to authenticate the
	// backend.
	ProxyCert string
	// MTLSCert/MTLSKey present a client certificate to the backend. Only
	// meaningful together with ProxyCert.
	MTLSCert string
	MTLSKey  string
	// CertHostname overrides the hostname used to verify the backend's
	// certificate.
	CertHostname string
	// NoCertValidation disables peer verification. Only takes effect when
	// ProxyCert is unset.
	NoCertValidation bool
}

// Security resolves the outbound mode. The branches are mutually exclusive
// and evaluated in precedence order: no cert and no skip flag means no
// transport security, a cert plus mutual cert/key means mutual TLS, a cert
// alone means server-auth TLS, and the skip flag without a cert means TLS
// with verification disabled.
func (o OutboundOptions) Security() OutboundSecurity {
	switch {
	case o.ProxyCert == "" && !o.NoCertValidation:
		return OutboundNone
	case o.ProxyCert != "" && o.MTLSCert != "" && o.MTLSKey != "":
		return OutboundMutualTLS
	case o.ProxyCert != "":
		return OutboundTLS
	default:
		return OutboundSkipVerify
	}
}

// DialOptions builds the gRPC dial options for the resolved outbound mode.
// The insecure modes are logged loudly so a misdeployment is visible in the
// server's startup output.
func (o OutboundOptions) DialOptions() ([]grpc.DialOption, error) {
	switch o.Security() {
	case OutboundMutualTLS:
		pool, err := certPool(o.ProxyCert)
		if err != nil {
			return nil, err
		}
		keyPair, err := tls.LoadX509KeyPair(o.MTLSCert, o.MTLSKey)
		if err != nil {
			return nil, fmt.Errorf("can't load mTLS client keypair: %w", err)
		}
		creds := credentials.NewTLS(&tls.Config{
			RootCAs:      pool,
			Certificates: []tls.Certificate{keyPair},
			ServerName:   o.CertHostname,
		})
		return []grpc.DialOption{grpc.WithTransportCredentials(creds)}, nil

	case OutboundTLS:
		creds, err := credentials.NewClientTLSFromFile(o.ProxyCert, o.CertHostname)
		if err != nil {
			return nil, fmt.Errorf("can't load proxy cert: %w", err)
		}
		return []grpc.DialOption{grpc.WithTransportCredentials(creds)}, nil

	case OutboundSkipVerify:
		zap.L().Warn("outbound TLS peer verification is DISABLED; the backend's identity will not be checked")
		creds := credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
		return []grpc.DialOption{grpc.WithTransportCredentials(creds)}, nil

	default:
		zap.L().Warn("proxying to the gRPC backend without transport security")
		return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, nil
	}
}

// ServerTLSConfig builds the inbound TLS configuration: server TLS when a
// cert/key pair is given, plus required-and-verified client certificates when
// a client CA bundle is also given. Returns nil when certFile is empty, which
// means serve plaintext.
func ServerTLSConfig(certFile, keyFile, clientCAFile string) (*tls.Config, error) {
	if certFile == "" {
		return nil, nil
	}
	keyPair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("can't load serve keypair: %w", err)
	}
	cfg := &tls.Config{Certificates: []tls.Certificate{keyPair}}
	if clientCAFile != "" {
		pool, err := certPool(clientCAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

func certPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read cert file %s: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
