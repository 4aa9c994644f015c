// Package acquire turns raw scraped orders into canonical invoice records.
//
// It delegates to the page-extraction channel for the actual order list and
// owns the normalization rules: locale-flexible date parsing with a
// current-time fallback, the "N/A" amount default, and the transient Pending
// status. An authentication challenge from the extractor is recovered as an
// empty result set; it must never corrupt the store or fail the run.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"invoicesync/internal/dateparse"
	"invoicesync/internal/logger"
	"invoicesync/internal/pageext"
	"invoicesync/pkg/models"
)

// Service orchestrates obtaining the canonical order list for a domain/year.
type Service struct {
	extractor pageext.Extractor
	timeout   time.Duration

	now func() time.Time
	log zerolog.Logger
}

// New creates an acquisition service. timeout bounds the wait on the
// page-extraction channel so an unanswered request cannot hang a run.
func New(extractor pageext.Extractor, timeout time.Duration) *Service {
	return &Service{
		extractor: extractor,
		timeout:   timeout,
		now:       time.Now,
		log:       logger.WithComponent("acquire"),
	}
}

// Acquire returns the canonical order list for domain/year. The returned
// records carry StatusPending; the orchestrator resolves them to a terminal
// status. An authentication challenge yields an empty list and no error.
func (s *Service) Acquire(ctx context.Context, domain string, year int) ([]models.Invoice, error) {
	const op = "Acquire"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.extractor.Extract(ctx, domain, year)
	if errors.Is(err, pageext.ErrAuthenticationRequired) {
		s.log.Warn().
			Str("domain", domain).
			Msg("Extraction hit a login challenge, nothing to sync this run")
		return []models.Invoice{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: extracting orders for %s: %w", op, domain, err)
	}

	orders := make([]models.Invoice, 0, len(raw))
	for _, order := range raw {
		if order.InvoiceID == "" {
			s.log.Warn().
				Str("date", order.Date).
				Msg("Skipping scraped order without an id")
			continue
		}
		orders = append(orders, s.normalize(order))
	}

	s.log.Info().
		Str("domain", domain).
		Int("year", year).
		Int("orders", len(orders)).
		Msg("Order acquisition completed")

	return orders, nil
}

// normalize maps one raw scraped order onto the canonical invoice shape.
func (s *Service) normalize(order pageext.RawOrder) models.Invoice {
	date, err := dateparse.Parse(order.Date)
	if err != nil {
		// A missing date must never block synchronization of an otherwise
		// valid invoice; fall back to the current time and leave a trace.
		s.log.Warn().
			Str("id", order.InvoiceID).
			Str("date_text", order.Date).
			Msg("Unparseable order date, falling back to current date")
		date = s.now()
	}

	amount := order.Amount
	if amount == "" {
		amount = "N/A"
	}

	items := order.Items
	if items == nil {
		items = []models.Item{}
	}

	return models.Invoice{
		ID:         order.InvoiceID,
		Date:       date,
		Amount:     amount,
		InvoiceURL: order.URL,
		Items:      items,
		Status:     models.StatusPending,
	}
}
