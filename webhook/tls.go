package webhook

import (
	"crypto/tls"
	"fmt"

	"golang.org/x/crypto/acme/autocert"
)

// AutocertTLS returns a TLS configuration backed by Let's Encrypt for the
// given host, caching certificates under cacheDir. The listener must be
// reachable on port 443 for the ALPN challenge.
func AutocertTLS(host, cacheDir string) *tls.Config {
	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(host),
		Cache:      autocert.DirCache(cacheDir),
	}
	return manager.TLSConfig()
}

// SelfSignedTLS builds a TLS configuration from a PEM keypair. Upload the
// certificate through Config.Certificate so the API server trusts it.
func SelfSignedTLS(certPEM, keyPEM []byte) (*tls.Config, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("webhook: load keypair: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}
