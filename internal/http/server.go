package httpserver

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/http/fcgi"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options lists the addresses to listen on. Empty addresses are skipped.
type Options struct {
	HTTPAddr        string
	HTTPSAddr       string
	FCGIAddr        string
	ShutdownTimeout time.Duration
}

// Server exposes one handler over plain HTTP, HTTPS with a self-signed
// certificate, and FastCGI.
type Server struct {
	logger    *logrus.Logger
	handler   http.Handler
	opts      Options
	listeners []*listener
}

type listener struct {
	name     string
	ln       net.Listener
	serve    func(net.Listener) error
	shutdown func(context.Context) error // nil means close the listener
}

func New(logger *logrus.Logger, handler http.Handler, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{logger: logger, handler: handler, opts: opts}
}

// Listen binds every configured address. On failure nothing stays bound.
func (s *Server) Listen() error {
	if s.opts.HTTPAddr != "" {
		srv := s.httpServer()
		if err := s.bind("http", s.opts.HTTPAddr, srv.Serve, srv.Shutdown); err != nil {
			return err
		}
	}

	if s.opts.HTTPSAddr != "" {
		cert, err := generateSelfSignedCert()
		if err != nil {
			s.Close()
			return fmt.Errorf("generate self-signed certificate: %w", err)
		}
		srv := s.httpServer()
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		serve := func(ln net.Listener) error { return srv.ServeTLS(ln, "", "") }
		if err := s.bind("https", s.opts.HTTPSAddr, serve, srv.Shutdown); err != nil {
			return err
		}
	}

	if s.opts.FCGIAddr != "" {
		serve := func(ln net.Listener) error { return fcgi.Serve(ln, s.handler) }
		if err := s.bind("fcgi", s.opts.FCGIAddr, serve, nil); err != nil {
			return err
		}
	}

	if len(s.listeners) == 0 {
		return errors.New("no listen address configured")
	}
	return nil
}

func (s *Server) bind(name, addr string, serve func(net.Listener) error, shutdown func(context.Context) error) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.Close()
		return fmt.Errorf("listen %s on %s: %w", name, addr, err)
	}
	s.listeners = append(s.listeners, &listener{name: name, ln: ln, serve: serve, shutdown: shutdown})
	return nil
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Addr returns the bound address of the named listener ("http", "https" or
// "fcgi"), or nil.
func (s *Server) Addr(name string) net.Addr {
	for _, l := range s.listeners {
		if l.name == name {
			return l.ln.Addr()
		}
	}
	return nil
}

// Serve runs all listeners until ctx is done, then shuts them down.
func (s *Server) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, l := range s.listeners {
		l := l
		g.Go(func() error {
			s.logger.WithFields(logrus.Fields{
				"listener": l.name,
				"addr":     l.ln.Addr().String(),
			}).Info("Starting server")
			err := l.serve(l.ln)
			if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("%s server: %w", l.name, err)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, l := range s.listeners {
			var err error
			if l.shutdown != nil {
				err = l.shutdown(shutdownCtx)
			} else {
				err = l.ln.Close()
			}
			if err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.WithError(err).WithField("listener", l.name).Error("Server shutdown error")
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// Close releases listeners bound by Listen without serving them.
func (s *Server) Close() {
	for _, l := range s.listeners {
		l.ln.Close()
	}
	s.listeners = nil
}

func generateSelfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Area Check"},
			CommonName:   "localhost",
		},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:   time.Now().Add(-time.Minute),
		NotAfter:    time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:    x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
		},
		BasicConstraintsValid: true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: derBytes,
	})
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})

	return tls.X509KeyPair(certPEM, keyPEM)
}
