// Package sync drives the invoice synchronization pipeline: it reconciles the
// acquired order list against the invoice store and uploads the documents of
// unseen orders to the remote storage folder, recording a terminal outcome per
// order.
//
// One run is one strictly sequential pass. Remote writes are therefore
// naturally serialized, and a failure on one order never aborts the rest: the
// order gets an Error record and the pass continues. Only failures outside
// the per-order scope (folder resolution, acquisition transport, store I/O)
// fail the run as a whole.
//
// The orchestrator does not defend against two overlapping runs; callers
// keep at most one run in flight at a time.
package sync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"invoicesync/internal/drive"
	"invoicesync/internal/logger"
	"invoicesync/internal/notify"
	"invoicesync/pkg/models"
)

const notificationTitle = "Invoice Sync"

// Acquirer produces the canonical order list for a domain/year.
type Acquirer interface {
	Acquire(ctx context.Context, domain string, year int) ([]models.Invoice, error)
}

// Store is the slice of the invoice store the orchestrator needs.
type Store interface {
	Upsert(invoice models.Invoice) error
	List() []models.Invoice
}

// Service is the synchronization orchestrator.
type Service struct {
	store    Store
	acquirer Acquirer
	remote   drive.Client
	fetcher  drive.DocumentFetcher
	notifier notify.Notifier

	// folderName is the fallback folder created when the configured folder id
	// cannot be resolved.
	folderName string

	log zerolog.Logger
}

// New wires an orchestrator from its collaborators.
func New(store Store, acquirer Acquirer, remote drive.Client, fetcher drive.DocumentFetcher, notifier notify.Notifier, folderName string) *Service {
	return &Service{
		store:      store,
		acquirer:   acquirer,
		remote:     remote,
		fetcher:    fetcher,
		notifier:   notifier,
		folderName: folderName,
		log:        logger.WithComponent("sync"),
	}
}

// Synchronize executes one full run for domain/year against the given remote
// folder and reports the aggregate result. Per-order errors are recorded in
// the store and do not fail the run.
func (s *Service) Synchronize(ctx context.Context, domain, folderID string, year int) models.SyncResult {
	s.notifier.Notify(notificationTitle, "Invoice synchronization started")

	count, err := s.run(ctx, domain, folderID, year)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("domain", domain).
			Int("synced", count).
			Msg("Synchronization run failed")
		s.notifier.Notify(notificationTitle, fmt.Sprintf("Synchronization failed: %v", err))
		return models.SyncResult{Success: false, Error: err.Error()}
	}

	s.log.Info().
		Str("domain", domain).
		Int("synced", count).
		Msg("Synchronization run completed")
	s.notifier.Notify(notificationTitle, fmt.Sprintf("Synchronization completed: %d new invoices", count))
	return models.SyncResult{Success: true, Count: count}
}

func (s *Service) run(ctx context.Context, domain, folderID string, year int) (int, error) {
	const op = "run"

	// Folder resolution happens once per run, before any order is touched.
	folder, err := s.resolveFolder(ctx, folderID)
	if err != nil {
		return 0, fmt.Errorf("%s: resolving target folder: %w", op, err)
	}

	// The existing-id set is built from every stored record regardless of
	// status: an order that previously ended in Error counts as seen and is
	// not retried.
	existing := make(map[string]struct{})
	for _, invoice := range s.store.List() {
		existing[invoice.ID] = struct{}{}
	}

	orders, err := s.acquirer.Acquire(ctx, domain, year)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	count := 0
	for _, order := range orders {
		if _, seen := existing[order.ID]; seen {
			s.log.Debug().
				Str("id", order.ID).
				Msg("Order already synchronized, skipping")
			continue
		}

		record, synced := s.processOrder(ctx, folder, order)
		if err := s.store.Upsert(record); err != nil {
			return count, fmt.Errorf("%s: persisting outcome for %s: %w", op, order.ID, err)
		}
		if synced {
			count++
		}
	}

	return count, nil
}

// resolveFolder returns the configured folder, falling back to creating the
// default-named folder when the id is absent or no longer resolves.
func (s *Service) resolveFolder(ctx context.Context, folderID string) (drive.Folder, error) {
	if folderID != "" {
		folder, err := s.remote.GetFolderInfo(ctx, folderID)
		if err == nil {
			return folder, nil
		}
		s.log.Warn().
			Err(err).
			Str("folder_id", folderID).
			Msg("Configured folder not resolvable, creating default folder")
	}
	return s.remote.CreateFolder(ctx, s.folderName)
}

// processOrder applies the per-order state machine and returns the terminal
// record plus whether it counts as newly synchronized. All failures inside
// this scope become Error records; nothing escapes.
func (s *Service) processOrder(ctx context.Context, folder drive.Folder, order models.Invoice) (models.Invoice, bool) {
	if order.InvoiceURL == "" {
		return failed(order, "missing invoice URL"), false
	}

	data, err := s.fetcher.Fetch(ctx, order.InvoiceURL)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("id", order.ID).
			Msg("Fetching invoice document failed")
		return failed(order, err.Error()), false
	}

	fileName := fmt.Sprintf("Invoice_%s.pdf", order.ID)

	// A document already present in the folder (from an interrupted earlier
	// run) is adopted instead of uploaded again.
	existing, err := s.remote.SearchFile(ctx, fileName, folder.ID)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("id", order.ID).
			Msg("Searching remote folder failed")
		return failed(order, err.Error()), false
	}
	if existing != nil {
		return succeeded(order, existing.ID, existing.WebViewLink), true
	}

	file, err := s.remote.UploadFile(ctx, fileName, data, folder.ID)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("id", order.ID).
			Msg("Uploading invoice document failed")
		return failed(order, err.Error()), false
	}

	return succeeded(order, file.ID, file.WebViewLink), true
}

func failed(order models.Invoice, reason string) models.Invoice {
	order.Status = models.StatusError
	order.Error = reason
	return order
}

func succeeded(order models.Invoice, fileID, viewLink string) models.Invoice {
	order.Status = models.StatusSuccess
	order.Error = ""
	order.DriveFileID = fileID
	order.DriveViewLink = viewLink
	return order
}
