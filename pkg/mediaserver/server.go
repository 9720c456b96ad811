package mediaserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/goph/emperror"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/op/go-logging"
	"github.com/quic-go/quic-go/http3"
	"go.uber.org/multierr"
)

type Server struct {
	sync.Mutex
	srv       *http.Server
	srv3      *http3.Server
	closed    bool
	host      string
	port      string
	addr3     string
	prefix    string
	idx       *Indexer
	log       *logging.Logger
	accesslog io.Writer
	closers   []io.Closer
}

// NewServer creates the report server. addr3 is the udp address of the HTTP/3 service,
// which runs next to https only. An empty addr3 disables HTTP/3.
func NewServer(
	addr string,
	addr3 string,
	prefix string,
	idx *Indexer,
	log *logging.Logger,
	accesslog io.Writer) (*Server, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot split address %s", addr)
	}
	if addr3 != "" {
		if _, _, err := net.SplitHostPort(addr3); err != nil {
			return nil, emperror.Wrapf(err, "cannot split address %s", addr3)
		}
	}
	srv := &Server{
		host:      host,
		port:      port,
		addr3:     addr3,
		prefix:    strings.Trim(prefix, "/"),
		idx:       idx,
		log:       log,
		accesslog: accesslog,
	}
	return srv, nil
}

// AddCloser registers resources which are closed on shutdown
func (s *Server) AddCloser(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Handler builds the routes: /{prefix}/{filesystem}/{bucket}/{path} and /metrics
func (s *Server) Handler() (http.Handler, error) {
	router := mux.NewRouter()
	router.Handle("/metrics", s.idx.Metrics().Handler()).Methods("GET")
	rh, err := NewReportHandler(s.prefix, s.idx, s.log)
	if err != nil {
		return nil, emperror.Wrap(err, "cannot create report handler")
	}
	if err := rh.SetRoutes(router); err != nil {
		return nil, emperror.Wrap(err, "cannot set routes")
	}
	return handlers.CombinedLoggingHandler(s.accesslog, router), nil
}

// altSvcHandler announces the HTTP/3 service on every https response
func (s *Server) altSvcHandler(srv3 *http3.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := srv3.SetQUICHeaders(w.Header()); err != nil {
			s.log.Debugf("cannot set quic headers: %v", err)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) tlsConfig(cert, key string) (*tls.Config, error) {
	if cert == "auto" || key == "auto" {
		s.log.Info("generating new certificate")
		c, err := DefaultCertificate()
		if err != nil {
			return nil, emperror.Wrap(err, "cannot generate default certificate")
		}
		return &tls.Config{Certificates: []tls.Certificate{*c}}, nil
	}
	c, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, emperror.Wrapf(err, "cannot load key pair %v/%v", cert, key)
	}
	return &tls.Config{Certificates: []tls.Certificate{c}}, nil
}

// ListenAndServe starts https if cert and key are given ("auto" generates a self signed certificate), http otherwise.
// With https and an HTTP/3 address both services run in parallel, it returns after both stopped.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe(cert, key string) error {
	if s.isClosed() {
		return http.ErrServerClosed
	}
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(s.host, s.port)

	var tlsConfig *tls.Config
	if cert != "" || key != "" {
		if tlsConfig, err = s.tlsConfig(cert, key); err != nil {
			return err
		}
	}

	s.Lock()
	if s.closed {
		s.Unlock()
		return http.ErrServerClosed
	}
	s.srv = &http.Server{
		Handler:   handler,
		Addr:      addr,
		TLSConfig: tlsConfig,
	}
	if tlsConfig != nil && s.addr3 != "" {
		s.srv3 = &http3.Server{
			Handler:   handler,
			Addr:      s.addr3,
			TLSConfig: http3.ConfigureTLSConfig(tlsConfig),
		}
		s.srv.Handler = s.altSvcHandler(s.srv3, handler)
	}
	srv, srv3 := s.srv, s.srv3
	s.Unlock()

	if tlsConfig == nil {
		s.log.Infof("starting HTTP mediainfo at http://%v/%v", addr, s.prefix)
		return srv.ListenAndServe()
	}
	if srv3 == nil {
		s.log.Infof("starting HTTPS mediainfo at https://%v/%v", addr, s.prefix)
		return srv.ListenAndServeTLS("", "")
	}

	var wg sync.WaitGroup
	var httpErr, http3Err error
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.log.Infof("starting HTTPS mediainfo at https://%v/%v", addr, s.prefix)
		httpErr = srv.ListenAndServeTLS("", "")
		s.log.Infof("HTTPS service stopped: %v", httpErr)
		if !errors.Is(httpErr, http.ErrServerClosed) {
			srv3.Close()
		}
	}()
	go func() {
		defer wg.Done()
		s.log.Infof("starting HTTP3 mediainfo at %v", s.addr3)
		http3Err = srv3.ListenAndServe()
		s.log.Infof("HTTP3 service stopped: %v", http3Err)
		if !errors.Is(http3Err, http.ErrServerClosed) {
			srv.Close()
		}
	}()
	wg.Wait()

	var result error
	for _, e := range []error{httpErr, http3Err} {
		if e != nil && !errors.Is(e, http.ErrServerClosed) {
			result = multierr.Append(result, e)
		}
	}
	if result == nil {
		return http.ErrServerClosed
	}
	return result
}

func (s *Server) isClosed() bool {
	s.Lock()
	defer s.Unlock()
	return s.closed
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Lock()
	s.closed = true
	srv, srv3 := s.srv, s.srv3
	s.Unlock()

	var err error
	if srv != nil {
		if e := srv.Shutdown(ctx); e != nil {
			err = multierr.Append(err, fmt.Errorf("cannot shutdown http server: %w", e))
		}
	}
	if srv3 != nil {
		if e := srv3.Shutdown(ctx); e != nil {
			err = multierr.Append(err, fmt.Errorf("cannot shutdown http3 server: %w", e))
		}
	}
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
