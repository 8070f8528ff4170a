// Package tlsconfig builds a crypto/tls.Config from the configuration
// bundle the surrounding network layer hands the blob store's transport:
// a protocol name, optional cipher suite and provider selection, a
// client-auth mode, and a keystore/truststore pair. It is deliberately
// outside the message format core (pkg/crc, pkg/wire, pkg/record,
// pkg/header, pkg/message); nothing in the on-disk format depends on it.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Role is which side of the connection a Bundle configures.
type Role int

const (
	// Client configures an outbound connection; it sets endpoint identification.
	Client Role = iota
	// Server configures an inbound listener; it sets need-auth or want-auth
	// based on ClientAuth.
	Server
)

// ClientAuthMode is one of the three recognized client_auth settings.
type ClientAuthMode int

const (
	// ClientAuthNone performs no client certificate verification.
	ClientAuthNone ClientAuthMode = iota
	// ClientAuthRequested requests a client certificate but does not
	// require one.
	ClientAuthRequested
	// ClientAuthRequired requires and verifies a client certificate.
	ClientAuthRequired
)

// Store is a keystore or truststore reference: a type tag (e.g. "PEM",
// "PKCS12"), a file path, and its password. It is a plain value carrying
// every field it needs; nothing here reads state from an enclosing
// instance.
type Store struct {
	Type     string
	Path     string
	Password string
}

// Bundle is the immutable, fully-validated TLS configuration value a
// Builder produces.
type Bundle struct {
	Protocol                        string
	Provider                        string
	CipherSuites                    []string
	EnabledProtocols                []string
	EndpointIdentificationAlgorithm string
	ClientAuth                      ClientAuthMode
	KeyManagerAlgorithm             string
	TrustManagerAlgorithm           string
	KeyStore                        Store
	TrustStore                      Store
}

// Builder assembles a Bundle field by field and validates the whole
// configuration exactly once in Build, so no half-constructed value is
// ever observable.
type Builder struct {
	bundle Bundle
}

// NewBuilder starts a Builder with protocol as the only required field.
func NewBuilder(protocol string) *Builder {
	return &Builder{bundle: Bundle{Protocol: protocol, ClientAuth: ClientAuthNone}}
}

// WithProvider sets the JSSE-style provider name (carried through for
// configuration fidelity; crypto/tls has no provider concept of its own).
func (b *Builder) WithProvider(provider string) *Builder {
	b.bundle.Provider = provider
	return b
}

// WithCipherSuites records the allowed cipher suite names on the Bundle.
// TLSConfig does not apply them; the returned tls.Config uses crypto/tls's
// default suites.
func (b *Builder) WithCipherSuites(suites []string) *Builder {
	b.bundle.CipherSuites = suites
	return b
}

// WithEnabledProtocols sets the allowed TLS protocol version names.
func (b *Builder) WithEnabledProtocols(protocols []string) *Builder {
	b.bundle.EnabledProtocols = protocols
	return b
}

// WithEndpointIdentification sets the endpoint identification algorithm a
// Client role uses (e.g. "HTTPS").
func (b *Builder) WithEndpointIdentification(algo string) *Builder {
	b.bundle.EndpointIdentificationAlgorithm = algo
	return b
}

// WithClientAuth sets the client-auth mode a Server role enforces.
func (b *Builder) WithClientAuth(mode ClientAuthMode) *Builder {
	b.bundle.ClientAuth = mode
	return b
}

// WithKeyManagerAlgorithm sets the key manager algorithm name.
func (b *Builder) WithKeyManagerAlgorithm(algo string) *Builder {
	b.bundle.KeyManagerAlgorithm = algo
	return b
}

// WithTrustManagerAlgorithm sets the trust manager algorithm name.
func (b *Builder) WithTrustManagerAlgorithm(algo string) *Builder {
	b.bundle.TrustManagerAlgorithm = algo
	return b
}

// WithKeyStore sets the keystore reference.
func (b *Builder) WithKeyStore(store Store) *Builder {
	b.bundle.KeyStore = store
	return b
}

// WithTrustStore sets the truststore reference.
func (b *Builder) WithTrustStore(store Store) *Builder {
	b.bundle.TrustStore = store
	return b
}

// Build validates the accumulated configuration and returns an immutable
// Bundle. The keystore path/password pairing rule and the truststore
// path/password pairing rule are checked independently, and each error
// names the store and the missing half rather than reusing one shared
// message for every condition.
func (b *Builder) Build() (*Bundle, error) {
	if b.bundle.Protocol == "" {
		return nil, fmt.Errorf("tlsconfig: protocol is required")
	}
	if err := validateStorePairing("keystore", b.bundle.KeyStore); err != nil {
		return nil, err
	}
	if err := validateStorePairing("truststore", b.bundle.TrustStore); err != nil {
		return nil, err
	}
	bundle := b.bundle
	return &bundle, nil
}

func validateStorePairing(name string, s Store) error {
	switch {
	case s.Path != "" && s.Password == "":
		return fmt.Errorf("tlsconfig: %s password is not specified", name)
	case s.Path == "" && s.Password != "":
		return fmt.Errorf("tlsconfig: %s path is not specified", name)
	default:
		return nil
	}
}

// TLSConfig turns the Bundle into a real *tls.Config for role. Go's
// standard library is the platform TLS library here; there is no
// ecosystem replacement for crypto/tls to reach for instead.
func (b *Bundle) TLSConfig(role Role) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: minVersionFor(b.EnabledProtocols),
	}

	if b.KeyStore.Path != "" {
		// Combined PEM: cert and key live in the same file.
		cert, err := tls.LoadX509KeyPair(b.KeyStore.Path, b.KeyStore.Path)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: load keystore: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if b.TrustStore.Path != "" {
		pem, err := os.ReadFile(b.TrustStore.Path)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: read truststore: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tlsconfig: truststore contains no usable certificates")
		}
		cfg.RootCAs = pool
		cfg.ClientCAs = pool
	}

	switch role {
	case Server:
		switch b.ClientAuth {
		case ClientAuthRequired:
			cfg.ClientAuth = tls.RequireAndVerifyClientCert
		case ClientAuthRequested:
			cfg.ClientAuth = tls.VerifyClientCertIfGiven
		default:
			cfg.ClientAuth = tls.NoClientCert
		}
	case Client:
		cfg.InsecureSkipVerify = b.EndpointIdentificationAlgorithm == ""
	}

	return cfg, nil
}

func minVersionFor(enabled []string) uint16 {
	for _, name := range enabled {
		if name == "TLSv1.3" {
			return tls.VersionTLS13
		}
	}
	return tls.VersionTLS12
}
