// SPDX-License-Identifier: Apache-2.0

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

type Config struct {
	// Enabled determines if TLS should be used. Defaults to false.
	Enabled bool
	// File path to the server PEM certificate or server PEM certificate
	CertFile string
	CertPEM  string
	// File path to the server PEM key or server PEM key content
	KeyFile string
	KeyPEM  string
	// File path to the CA PEM certificate or PEM certificate used to verify
	// client certificates. When provided, clients must present a valid
	// certificate signed by this CA.
	ClientCACertFile string
	ClientCACertPEM  string
}

var (
	ErrMissingCertificate = errors.New("tls is enabled but no server certificate and key were provided")
	errInvalidCACert      = errors.New("no valid certificate found in CA PEM")
)

// NewServerConfig returns the TLS configuration for a server, or nil if TLS
// is not enabled.
func NewServerConfig(cfg *Config) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	certificates, err := getCertificates(cfg)
	if err != nil {
		return nil, err
	}

	tlsCfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		MaxVersion:   0,
		Certificates: certificates,
		ClientAuth:   tls.NoClientCert,
	}

	if cfg.IsClientCAProvided() {
		certPool, err := getClientCertPool(cfg)
		if err != nil {
			return nil, err
		}
		tlsCfg.ClientCAs = certPool
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsCfg, nil
}

func getClientCertPool(cfg *Config) (*x509.CertPool, error) {
	pemCertBytes, err := readPEMBytes(cfg.ClientCACertFile, cfg.ClientCACertPEM)
	if err != nil {
		return nil, fmt.Errorf("reading client CA certificate file: %w", err)
	}

	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(pemCertBytes) {
		return nil, errInvalidCACert
	}
	return certPool, nil
}

func getCertificates(cfg *Config) ([]tls.Certificate, error) {
	if !cfg.IsCertificateProvided() {
		return nil, ErrMissingCertificate
	}

	pemCertBytes, err := readPEMBytes(cfg.CertFile, cfg.CertPEM)
	if err != nil {
		return nil, err
	}
	pemKeyBytes, err := readPEMBytes(cfg.KeyFile, cfg.KeyPEM)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(pemCertBytes, pemKeyBytes)
	if err != nil {
		return nil, err
	}
	return []tls.Certificate{cert}, nil
}

// readPEMBytes will parse the certificate on input and return the pem byte
// content. It accepts a pem certificate or the file path to a pem certificate.
func readPEMBytes(certFile, certPEM string) ([]byte, error) {
	if certFile != "" {
		return os.ReadFile(certFile)
	}

	return []byte(certPEM), nil
}

func (c *Config) IsCertificateProvided() bool {
	return (c.CertFile != "" || c.CertPEM != "") && (c.KeyFile != "" || c.KeyPEM != "")
}

func (c *Config) IsClientCAProvided() bool {
	return c.ClientCACertFile != "" || c.ClientCACertPEM != ""
}
