// Package certs provides a self-signed TLS certificate for serving the API over HTTPS locally.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// File names inside the certificate directory.
const (
	CertFileName = "server.crt"
	KeyFileName  = "server.key"
)

// DefaultValidity is how long a generated certificate stays valid.
const DefaultValidity = 90 * 24 * time.Hour

// DefaultHosts are the names a generated certificate covers.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// Manager hands out the server certificate.
type Manager interface {
	Certificate() (tls.Certificate, error)
}

// Store keeps a self-signed certificate and key on disk, regenerating them when they are missing,
// unreadable, expired or do not cover the configured hosts.
type Store struct {
	now      func() time.Time
	dir      string
	hosts    []string
	validity time.Duration
}

// NewStore creates a store in dir. Empty hosts select DefaultHosts.
func NewStore(dir string, hosts ...string) *Store {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	return &Store{dir: dir, hosts: hosts, validity: DefaultValidity, now: time.Now}
}

// CertPath is the PEM certificate path.
func (s *Store) CertPath() string { return filepath.Join(s.dir, CertFileName) }

// KeyPath is the PEM private key path.
func (s *Store) KeyPath() string { return filepath.Join(s.dir, KeyFileName) }

// Certificate loads the stored certificate, generating a new one when needed.
func (s *Store) Certificate() (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(s.CertPath(), s.KeyPath())
	if err == nil {
		verr := s.usable(cert)
		if verr == nil {
			return cert, nil
		}
		slog.Info("Regenerating server certificate", "dir", s.dir, "reason", verr)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Stored server certificate unreadable, regenerating", "dir", s.dir, "error", err)
	}

	return s.generate()
}

func (s *Store) usable(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificate in chain")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := s.now()
	if now.Before(leaf.NotBefore) || now.After(leaf.NotAfter) {
		return fmt.Errorf("certificate outside validity window %s - %s",
			leaf.NotBefore.Format(time.RFC3339), leaf.NotAfter.Format(time.RFC3339))
	}
	for _, host := range s.hosts {
		if err := leaf.VerifyHostname(host); err != nil {
			return fmt.Errorf("certificate does not cover %s: %w", host, err)
		}
	}
	return nil
}

func (s *Store) generate() (tls.Certificate, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := s.now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"mailvet"}, CommonName: s.hosts[0]},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(s.validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, host := range s.hosts {
		if ip := net.ParseIP(host); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, host)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to encode key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	if err := os.WriteFile(s.CertPath(), certPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(s.KeyPath(), keyPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write key: %w", err)
	}

	slog.Info("Generated self-signed server certificate",
		"dir", s.dir,
		"hosts", s.hosts,
		"expires", template.NotAfter.Format(time.RFC3339))

	return tls.X509KeyPair(certPEM, keyPEM)
}
