package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for the ledger API. Ledger
// operations are small and synchronous, so the write timeout stays tight.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
