package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/daveisadork/flexcore"
	"github.com/daveisadork/flexcore/discovery"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP server that streams discovery events over a websocket",
	RunE:  runServe,
}

// discoveryHub fans out decoded discovery events to every connected
// websocket client, replacing the teacher's raw-bytes Service.WSHandler
// (internal/discovery/discovery.go) now that discovery.Table already
// decodes beacons into structured events rather than opaque frames.
type discoveryHub struct {
	mu   sync.Mutex
	subs map[chan discovery.Event]struct{}
}

func newDiscoveryHub() *discoveryHub {
	return &discoveryHub{subs: make(map[chan discovery.Event]struct{})}
}

func (h *discoveryHub) broadcast(ev discovery.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *discoveryHub) subscribe() chan discovery.Event {
	ch := make(chan discovery.Event, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *discoveryHub) unsubscribe(ch chan discovery.Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *discoveryHub) wsHandler(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{
		CheckOrigin:       func(*http.Request) bool { return true },
		EnableCompression: false,
	}
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = ws.Close() }()

	ch := h.subscribe()
	defer h.unsubscribe(ch)
	for ev := range ch {
		_ = ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := ws.WriteJSON(jsonEvent{Kind: ev.Kind.String(), Descriptor: ev.Descriptor}); err != nil {
			return
		}
	}
}

type jsonEvent struct {
	Kind       string                    `json:"kind"`
	Descriptor discovery.RadioDescriptor `json:"descriptor"`
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := newDiscoveryHub()
	client := flexcore.New(cfg.ClientOptions(nil, apiLog))
	client.OnDiscoveryEvent(hub.broadcast)
	go func() { _ = client.Run(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/discovery", hub.wsHandler)
	mux.HandleFunc("/radios", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(client.Radios())
	})
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	handler := http.Handler(mux)
	if cfg.EnableCORS {
		handler = withCORS(handler)
	}
	if cfg.EnableCOI {
		handler = withCOI(handler)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// withCOI adds COOP/COEP/CORP so SharedArrayBuffer works in the served UI,
// kept from the teacher's cmd/bridge/main.go.
func withCOI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
