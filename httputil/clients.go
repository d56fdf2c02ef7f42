package httputil

import (
	"net/http"
	"time"

	"dealer_sync/config"
)

// Clients share one blanket timeout: the upstream has no retry or
// per-call deadline beyond it.
type Clients struct {
	API   *http.Client // listings search, JSON
	Pages *http.Client // item detail pages, HTML
}

func NewClients(provider *config.ProviderConfig) *Clients {
	timeout := provider.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Clients{
		API:   &http.Client{Timeout: timeout},
		Pages: &http.Client{Timeout: timeout},
	}
}
