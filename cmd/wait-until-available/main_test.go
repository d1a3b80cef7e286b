package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAvailable expects a service to count as available when it answers the listing with OK or
// NOT FOUND, and not when it fails or cannot be reached.
func TestAvailable(t *testing.T) {
	statuses := map[int]bool{
		http.StatusOK:                  true,
		http.StatusNotFound:            true,
		http.StatusInternalServerError: false,
		http.StatusServiceUnavailable:  false,
	}
	for status, expected := range statuses {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		assert.Equal(t, expected, available(server.URL+"/contacts"), http.StatusText(status))
		server.Close()
	}

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	assert.False(t, available(url))
}
