// Package testshop serves a small storefront that mirrors the markup of the
// real shop closely enough for the scenarios to run against it locally.
package testshop

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds server configuration options.
type Config struct {
	Addr     string // ":0" picks a free port
	Password string // accepted by both login forms
}

// DefaultConfig listens on a random local port.
func DefaultConfig() Config {
	return Config{Addr: "127.0.0.1:0", Password: "valid_password"}
}

// Product is one catalog entry.
type Product struct {
	ID    int
	Name  string
	Price float64
}

// Products is the fixed catalog.
var Products = []Product{
	{ID: 1, Name: "Basking Lamp", Price: 24.00},
	{ID: 2, Name: "Cricket Feeder", Price: 12.50},
	{ID: 3, Name: "Terrarium Moss", Price: 7.25},
}

// Server is a storefront that can be started and stopped from tests.
type Server struct {
	cfg        Config
	httpServer *http.Server

	mu      sync.Mutex
	addr    string
	running bool
	hits    map[string]int
}

// NewServer builds the storefront. It is not listening until Start.
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	s := &Server{cfg: cfg, hits: make(map[string]int)}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Use(s.countHits)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/en/", http.StatusFound)
	})
	r.Route("/en", func(r chi.Router) {
		r.Get("/", s.handleHome)
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/profile", s.handleDashboard)
		r.Get("/products", s.handleProducts)
		r.Get("/products/{id}", s.handleProduct)
		r.Get("/cards/cart", s.handleCart)
		r.Get("/cart", s.handleCart)
		r.Post("/cart/add", s.handleCartAdd)
		r.Get("/checkout", s.handleCheckout)
		r.Get("/orders", s.handleOrders)
	})
	r.Get("/static/logo.png", handleLogo)
	return r
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Start begins serving in the background and returns the bound address.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}
	s.addr = ln.Addr().String()
	s.running = true

	go func() { _ = s.httpServer.Serve(ln) }()
	return s.addr, nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// URL is the base URL of a started server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "http://" + s.addr
}

// Hits returns how often "METHOD /path" was requested.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Handler exposes the routes for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
