package pageext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicesync/internal/logger"
)

// Bridge implements Extractor over a local HTTP ingress.
//
// Extract registers a pending request under a fresh correlation id and blocks
// until the companion scraper posts a reply for that id or the context
// expires. Each pending slot accepts exactly one reply; replies for unknown or
// already-resolved ids are rejected, so a stale scraper can never complete a
// later request.
//
// Ingress routes:
//
//	GET  /health                  liveness probe
//	GET  /v1/extractions          pending requests the scraper should work on
//	POST /v1/extractions/{id}     the single reply for one request
type Bridge struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest

	log zerolog.Logger
}

type pendingRequest struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Year   int    `json:"year"`

	reply chan extractionReply
}

// extractionReply is the wire shape of the scraper's answer. Setting
// AuthenticationRequired reports a login challenge instead of a batch.
type extractionReply struct {
	Invoices               []RawOrder `json:"invoices"`
	AuthenticationRequired bool       `json:"authenticationRequired"`
}

// NewBridge returns an unstarted bridge; serve it with net/http.
func NewBridge() *Bridge {
	return &Bridge{
		pending: make(map[string]*pendingRequest),
		log:     logger.WithComponent("pageext"),
	}
}

// Extract implements Extractor. It blocks until the scraper replies or ctx
// expires; callers are expected to bound the wait with a deadline so an
// unanswered login challenge cannot hang a run forever.
func (b *Bridge) Extract(ctx context.Context, domain string, year int) ([]RawOrder, error) {
	const op = "Extract"

	req := &pendingRequest{
		ID:     uuid.NewString(),
		Domain: domain,
		Year:   year,
		reply:  make(chan extractionReply, 1),
	}

	b.mu.Lock()
	b.pending[req.ID] = req
	b.mu.Unlock()
	defer b.remove(req.ID)

	b.log.Info().
		Str("request_id", req.ID).
		Str("domain", domain).
		Int("year", year).
		Msg("Waiting for page extraction reply")

	select {
	case reply := <-req.reply:
		if reply.AuthenticationRequired {
			return nil, fmt.Errorf("%s: %w", op, ErrAuthenticationRequired)
		}
		b.log.Info().
			Str("request_id", req.ID).
			Int("orders", len(reply.Invoices)).
			Msg("Page extraction reply received")
		return reply.Invoices, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: waiting for extraction reply: %w", op, ctx.Err())
	}
}

func (b *Bridge) remove(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

// ServeHTTP implements the ingress.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" && r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if r.URL.Path == "/v1/extractions" && r.Method == http.MethodGet {
		b.handleListPending(w)
		return
	}

	if id, ok := strings.CutPrefix(r.URL.Path, "/v1/extractions/"); ok && r.Method == http.MethodPost {
		b.handleReply(w, r, id)
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"error": "route not found"})
}

func (b *Bridge) handleListPending(w http.ResponseWriter) {
	b.mu.Lock()
	requests := make([]*pendingRequest, 0, len(b.pending))
	for _, req := range b.pending {
		requests = append(requests, req)
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (b *Bridge) handleReply(w http.ResponseWriter, r *http.Request, id string) {
	var reply extractionReply
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&reply); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid reply body"})
		return
	}

	b.mu.Lock()
	req, ok := b.pending[id]
	if ok {
		// One-shot: the slot is gone before the waiter even wakes up.
		delete(b.pending, id)
	}
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusGone, map[string]string{"error": "unknown or already-resolved request"})
		return
	}

	req.reply <- reply
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
