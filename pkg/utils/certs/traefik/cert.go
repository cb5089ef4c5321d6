// Package traefik reads certificates from a traefik acme.json store.
package traefik

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var ErrDomainNotFound = errors.New("domain not found")

var (
	certificates = jp.MustParseString("$..Certificates[*]")
	domainMain   = jp.MustParseString("$.domain.main")
	domainSans   = jp.MustParseString("$.domain.sans[*]")
)

type acmeEntry struct {
	Certificate string `json:"certificate"`
	Key         string `json:"key"`
}

// LoadCertificate reads the acme store in file and returns the key pair
// issued for domain.
func LoadCertificate(file, domain string) (tls.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading acme store: %w", err)
	}
	return ParseCertificate(data, domain)
}

func ParseCertificate(data []byte, domain string) (tls.Certificate, error) {
	entry, err := lookup(data, domain)
	if err != nil {
		return tls.Certificate{}, err
	}
	certPEM, err := base64.StdEncoding.DecodeString(entry.Certificate)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decoding certificate: %w", err)
	}
	keyPEM, err := base64.StdEncoding.DecodeString(entry.Key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decoding key: %w", err)
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

// lookup finds the entry of domain in any resolver, matching either the
// main domain or one of the alternative names.
func lookup(data []byte, domain string) (*acmeEntry, error) {
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	for _, res := range certificates.Get(obj) {
		if !matches(res, domain) {
			continue
		}
		entry := acmeEntry{}
		if err := oj.Unmarshal([]byte(oj.JSON(res)), &entry); err != nil {
			return nil, err
		}
		return &entry, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrDomainNotFound, domain)
}

func matches(entry any, domain string) bool {
	if main := domainMain.First(entry); main == domain {
		return true
	}
	for _, san := range domainSans.Get(entry) {
		if san == domain {
			return true
		}
	}
	return false
}
