// Package store persists invoice records keyed by their business order id.
//
// The on-disk layout is a single JSON document mapping order id to record,
// written atomically on every mutation. Fields are additive only; there is no
// schema versioning. The collection is kept sorted by order date, newest
// first, re-sorting on every upsert. That is an O(n log n) cost per write,
// accepted for simplicity at the store's expected scale of hundreds of
// records.
//
// A mutex serializes mutations, so the store is safe for concurrent callers
// even though synchronization runs are normally serialized upstream.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"invoicesync/internal/logger"
	"invoicesync/pkg/models"
)

// Store is a file-backed collection of invoice records.
type Store struct {
	path string

	mu      sync.Mutex
	records map[string]models.Invoice
	sorted  []models.Invoice

	now func() time.Time
	log zerolog.Logger
}

// Open loads the store at path, creating an empty one if the file does not
// exist yet.
func Open(path string) (*Store, error) {
	const op = "Open"

	s := &Store{
		path:    path,
		records: make(map[string]models.Invoice),
		now:     time.Now,
		log:     logger.WithComponent("store"),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s: %w", op, path, errors.Join(ErrStorage, err))
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("%s: decoding %s: %w", op, path, errors.Join(ErrStorage, err))
	}
	s.resort()

	s.log.Debug().
		Str("path", path).
		Int("records", len(s.records)).
		Msg("Invoice store loaded")

	return s, nil
}

// Upsert inserts the record if its id is unseen, otherwise merges it into the
// existing record. CreatedAt is set only on first insert; UpdatedAt is always
// refreshed. The collection is re-sorted and persisted before returning.
func (s *Store) Upsert(invoice models.Invoice) error {
	const op = "Upsert"

	if invoice.ID == "" {
		return fmt.Errorf("%s: invoice has no id", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.records[invoice.ID]; ok {
		invoice = merge(existing, invoice)
	} else {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now

	s.records[invoice.ID] = invoice
	s.resort()

	if err := s.persist(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug().
		Str("id", invoice.ID).
		Str("status", string(invoice.Status)).
		Msg("Invoice record saved")

	return nil
}

// Get returns the record for id, if present.
func (s *Store) Get(id string) (models.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, ok := s.records[id]
	return invoice, ok
}

// List returns all records, newest order date first.
func (s *Store) List() []models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Invoice, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// ListRecent returns the first n records of List.
func (s *Store) ListRecent(n int) []models.Invoice {
	all := s.List()
	if n < 0 {
		n = 0
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// merge folds an incoming record into an existing one. Incoming fields win;
// zero-valued incoming fields keep what was stored. CreatedAt always survives
// from the existing record, and the error text is dropped once the record
// leaves the Error status.
func merge(existing, incoming models.Invoice) models.Invoice {
	out := incoming
	out.CreatedAt = existing.CreatedAt

	if out.Date.IsZero() {
		out.Date = existing.Date
	}
	if out.Amount == "" {
		out.Amount = existing.Amount
	}
	if out.InvoiceURL == "" {
		out.InvoiceURL = existing.InvoiceURL
	}
	if len(out.Items) == 0 {
		out.Items = existing.Items
	}
	if out.Status == "" {
		out.Status = existing.Status
	}
	if out.Status != models.StatusError {
		out.Error = ""
	} else if out.Error == "" {
		out.Error = existing.Error
	}
	if out.DriveFileID == "" {
		out.DriveFileID = existing.DriveFileID
	}
	if out.DriveViewLink == "" {
		out.DriveViewLink = existing.DriveViewLink
	}

	return out
}

// resort rebuilds the date-descending view. Callers must hold the mutex.
func (s *Store) resort() {
	s.sorted = s.sorted[:0]
	for _, invoice := range s.records {
		s.sorted = append(s.sorted, invoice)
	}
	sort.SliceStable(s.sorted, func(i, j int) bool {
		return s.sorted[i].Date.After(s.sorted[j].Date)
	})
}

// persist writes the id-to-record mapping atomically via a temp file rename.
// Callers must hold the mutex.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Join(ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".invoices-*.json")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}

	return nil
}
