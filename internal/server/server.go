package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/moat-bus/moatcfg/internal/logging"
	"github.com/moat-bus/moatcfg/internal/store"
)

// ServiceType is the mDNS service type moat-serve announces.
const ServiceType = "_moatcfg._tcp"

// ServiceDomain is the mDNS domain (typically "local.")
const ServiceDomain = "local."

// Config holds the server configuration.
type Config struct {
	Host     string
	Port     int
	Announce bool   // announce the service over mDNS
	Instance string // mDNS instance name; defaults to "moat-serve"
}

// Server serves stored device configurations to flasher agents.
type Server struct {
	config    *Config
	inventory *store.Store
	httpSrv   *http.Server
	mdns      *zeroconf.Server
}

// New creates a Server over an opened inventory.
func New(config *Config, inventory *store.Store) *Server {
	s := &Server{
		config:    config,
		inventory: inventory,
	}
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the HTTP mux; exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/serials", s.handleSerials)
	mux.HandleFunc("/v1/config/", s.handleConfig)
	mux.HandleFunc("/v1/ws", s.handleWebSocket)
	return mux
}

// Start listens and blocks until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpSrv.Addr, err)
	}

	if s.config.Announce {
		if err := s.announce(ln); err != nil {
			ln.Close()
			return err
		}
	}

	logging.Info("Provisioning server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Bool("mdns", s.config.Announce),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops announcing and drains active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	logging.Info("Server stopped")
	logging.Sync()
	return nil
}

// announce registers the service over mDNS on the listener's port.
func (s *Server) announce(ln net.Listener) error {
	instance := s.config.Instance
	if instance == "" {
		instance = "moat-serve"
	}
	port := ln.Addr().(*net.TCPAddr).Port

	mdns, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port,
		[]string{"path=/v1/ws"}, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	s.mdns = mdns

	logging.Info("Announced mDNS service",
		zap.String("instance", instance),
		zap.String("type", ServiceType),
		zap.Int("port", port),
	)
	return nil
}

// handleSerials lists stored serials as a JSON array.
func (s *Server) handleSerials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serials, err := s.inventory.List()
	if err != nil {
		logging.Error("Failed to list inventory", zap.Error(err))
		http.Error(w, "inventory error", http.StatusInternalServerError)
		return
	}
	if serials == nil {
		serials = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(serials); err != nil {
		logging.Error("Failed to write serial list", zap.Error(err))
	}
}

// handleConfig returns the raw encoded container for one serial.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serial := strings.TrimPrefix(r.URL.Path, "/v1/config/")
	if serial == "" || strings.Contains(serial, "/") {
		http.Error(w, "bad serial", http.StatusBadRequest)
		return
	}

	blob, err := s.inventory.Get(serial)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logging.Warn("Config requested for unknown serial", zap.String("serial", serial))
			http.Error(w, "unknown serial", http.StatusNotFound)
			return
		}
		logging.Error("Failed to read inventory", zap.String("serial", serial), zap.Error(err))
		http.Error(w, "inventory error", http.StatusInternalServerError)
		return
	}

	logging.Info("Serving configuration",
		zap.String("serial", serial),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("bytes", len(blob)),
	)
	logging.LogBlob("served blob", blob)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(blob)
}
