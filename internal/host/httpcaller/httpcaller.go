// Package httpcaller implements the hub package's RemoteCaller over plain
// HTTP, and a chi-routed server for receiving dispatched envelopes. The
// spec only requires that the dispatched bytes be a byte-exact DIDL
// envelope (see internal/idl); how those bytes travel between processes is
// an external-collaborator concern, and HTTP+chi is this module's answer
// to it.
package httpcaller

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	hub "github.com/seniorjoinu/ic-event-hub"
	"github.com/seniorjoinu/ic-event-hub/internal/host"
)

// PrincipalResolver maps a principal to the base URL of the process hosting
// it. Production deployments would back this with a service registry or
// DNS convention; the engine itself is agnostic to how principals resolve
// to addresses.
type PrincipalResolver interface {
	Resolve(p hub.Principal) (baseURL string, ok bool)
}

// StaticResolver is a PrincipalResolver backed by a fixed map, suitable for
// small fixed topologies and tests.
type StaticResolver map[hub.Principal]string

// Resolve implements PrincipalResolver.
func (r StaticResolver) Resolve(p hub.Principal) (string, bool) {
	url, ok := r[p]
	return url, ok
}

// Client implements hub.RemoteCaller by POSTing the envelope bytes to
// http://<resolved-base-url>/call/<method>.
type Client struct {
	HTTP     *http.Client
	Resolver PrincipalResolver
}

// NewClient builds a Client with a bounded-timeout *http.Client.
func NewClient(resolver PrincipalResolver) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Resolver: resolver,
	}
}

// Call implements hub.RemoteCaller. The returned channel always receives
// exactly one value before closing. Call returns without waiting for the
// HTTP round trip, which runs in a goroutine of its own.
func (c *Client) Call(ctx context.Context, endpoint hub.Endpoint, payload []byte) <-chan error {
	ch := make(chan error, 1)

	baseURL, ok := c.Resolver.Resolve(endpoint.Principal)
	if !ok {
		ch <- fmt.Errorf("httpcaller: no address for principal %s", endpoint.Principal)
		close(ch)
		return ch
	}

	go func() {
		url := baseURL + "/call/" + endpoint.Method
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			ch <- err
			close(ch)
			return
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			ch <- err
			close(ch)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			ch <- fmt.Errorf("httpcaller: %s returned %d: %s", url, resp.StatusCode, string(body))
			close(ch)
			return
		}

		ch <- nil
		close(ch)
	}()

	return ch
}

// EventHandler processes one dispatched envelope addressed to method.
type EventHandler func(ctx context.Context, envelope []byte) error

// Server routes inbound /call/{method} requests to registered
// EventHandlers, and resolves the caller principal from the
// X-Principal-Hex request header set by whatever reverse proxy or mTLS
// terminator authenticates the peer -- this package implements no
// authentication of its own.
type Server struct {
	router   chi.Router
	handlers map[string]EventHandler
}

// NewServer builds a Server with the given method handlers registered.
func NewServer(handlers map[string]EventHandler) *Server {
	s := &Server{router: chi.NewRouter(), handlers: handlers}
	s.router.Post("/call/{method}", s.handleCall)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	h, ok := s.handlers[method]
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if hexPrincipal := r.Header.Get("X-Principal-Hex"); hexPrincipal != "" {
		if p, ok := parsePrincipalHex(hexPrincipal); ok {
			ctx = host.WithCaller(ctx, p)
		}
	}

	if err := h(ctx, body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parsePrincipalHex(s string) (hub.Principal, bool) {
	var p hub.Principal
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(p) {
		return hub.Principal{}, false
	}
	copy(p[:], b)
	return p, true
}
