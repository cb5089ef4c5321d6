// Package certs provides a tls.Config whose certificate is reloaded when the
// underlying files change.
package certs

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/utils/certs/traefik"
)

var ErrNoCertificate = errors.New("no certificate configured")

type Source struct {
	CertFile      string
	KeyFile       string
	CAFile        string // optional, enables client cert verification
	TraefikStore  string // acme.json, wins over CertFile/KeyFile
	TraefikDomain string
}

func (s Source) Enabled() bool {
	return (s.TraefikStore != "" && s.TraefikDomain != "") ||
		(s.CertFile != "" && s.KeyFile != "")
}

type Provider struct {
	src  Source
	l    *log.Logger
	mu   sync.RWMutex
	cert *tls.Certificate
}

type Option func(p *Provider)

func WithLogger(l *log.Logger) Option {
	return func(p *Provider) {
		p.l = l
	}
}

// NewProvider loads the initial certificate. Changes to the configured files
// are picked up until ctx is done.
func NewProvider(ctx context.Context, src Source, opts ...Option) (*Provider, error) {
	if !src.Enabled() {
		return nil, ErrNoCertificate
	}
	p := &Provider{src: src, l: log.Default().Named("certs")}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, file := range []string{src.TraefikStore, src.CertFile, src.KeyFile} {
		if file == "" {
			continue
		}
		if err := watcher.Add(file); err != nil {
			p.l.Warn("could not watch cert file",
				log.String("file", file), log.ErrorField(err))
		}
	}
	go p.watch(ctx, watcher)
	return p, nil
}

// TLSConfig returns a config serving the current certificate.
func (p *Provider) TLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return p.Certificate(), nil
		},
		MinVersion: tls.VersionTLS13,
	}
	if p.src.CAFile != "" {
		p.l.Info("Loading ca cert", log.String("file", p.src.CAFile))
		caCert, err := os.ReadFile(p.src.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading root CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates in %s", p.src.CAFile)
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	}
	return cfg, nil
}

func (p *Provider) Certificate() *tls.Certificate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cert
}

func (p *Provider) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			p.l.Debug("context done, stopping cert reload")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
				p.l.Info("cert file changed, reloading cert",
					log.String("file", event.Name))
				// a failed reload keeps serving the previous certificate
				if err := p.load(); err != nil {
					p.l.Error("could not reload cert", log.ErrorField(err))
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.l.Error("watcher error", log.ErrorField(err))
		}
	}
}

func (p *Provider) load() error {
	var cert tls.Certificate
	var err error
	if p.src.TraefikStore != "" && p.src.TraefikDomain != "" {
		p.l.Info("Looking up traefik certs",
			log.String("file", p.src.TraefikStore),
			log.String("domain", p.src.TraefikDomain))
		cert, err = traefik.LoadCertificate(p.src.TraefikStore, p.src.TraefikDomain)
	} else {
		p.l.Info("Loading cert",
			log.String("key", p.src.KeyFile),
			log.String("cert", p.src.CertFile))
		cert, err = tls.LoadX509KeyPair(p.src.CertFile, p.src.KeyFile)
	}
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cert = &cert
	return nil
}
