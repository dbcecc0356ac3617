package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"fintrack/internal/interfaces/scheduler"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/middleware"
)

// StartServers launches the API server in a goroutine and, when TLS with
// HTTP redirect is configured, a second listener on :80 that bounces
// everything to HTTPS. The redirect server is nil when not enabled.
func StartServers(cfg *config.Config, handler http.Handler) (*http.Server, *http.Server) {
	srv := newHTTPServer(cfg.Server.Host+":"+cfg.Server.Port, handler)

	var redirectSrv *http.Server
	if cfg.TLS.Enabled && cfg.TLS.RedirectHTTP {
		redirectSrv = newHTTPServer(":80", redirectToHTTPS(cfg.Server.AllowedHosts))
		go func() {
			log.Println("HTTP redirect server starting on :80")
			if err := redirectSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP redirect server error: %v", err)
			}
		}()
	}

	go func() {
		var err error
		if cfg.TLS.Enabled {
			log.Printf("HTTPS server starting on %s", srv.Addr)
			err = srv.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath)
		} else {
			log.Printf("HTTP server starting on %s", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	return srv, redirectSrv
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// GracefulShutdown drains the background sync machinery first so in-flight
// sync jobs finish against a live database, then stops the listeners. The
// scheduler owns the worker pool drain when it exists; with the scheduler
// disabled the pool is drained directly.
func GracefulShutdown(srv, redirectSrv *http.Server, sched *scheduler.Scheduler, pool *scheduler.WorkerPool, timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if sched != nil {
		sched.Shutdown(timeout)
	} else if pool != nil {
		pool.ShutdownWithTimeout(timeout)
	}

	if redirectSrv != nil {
		if err := redirectSrv.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP redirect server: %v", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down main server: %v", err)
	}

	log.Println("Server stopped")
}

// redirectToHTTPS issues 301s to the HTTPS listener. The Host header (or
// X-Forwarded-Host when present) is checked against the allow list so an
// attacker-supplied host never ends up in a redirect target.
func redirectToHTTPS(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}

		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		if bare, _, err := net.SplitHostPort(host); err == nil {
			host = bare
		}

		http.Redirect(w, r, "https://"+host+r.RequestURI, http.StatusMovedPermanently)
	})
}
