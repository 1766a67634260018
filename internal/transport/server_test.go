package transport

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hostdrop/hostdrop/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Addr:         ":0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := NewServer(testConfig(), handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for the listener to come up.
	var addr string
	for i := 0; i < 50; i++ {
		addr = server.Addr()
		if addr != ":0" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if addr == ":0" {
		t.Fatal("server never bound a listener")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
	if err != nil {
		t.Fatalf("GET / = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %v, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}

	if err := <-errCh; err != nil {
		t.Errorf("Start() returned error after shutdown: %v", err)
	}
}

func TestServer_AddrBeforeStart(t *testing.T) {
	t.Parallel()

	server := NewServer(testConfig(), http.NotFoundHandler())

	if got := server.Addr(); got != ":0" {
		t.Errorf("Addr() before Start = %q, want :0", got)
	}
}

func TestNewServer_NilArguments(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("NewServer(nil, handler) should panic")
		}
	}()

	NewServer(nil, http.NotFoundHandler())
}
