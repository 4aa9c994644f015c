package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoicesync/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "invoices.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func mustUpsert(t *testing.T, s *Store, invoice models.Invoice) {
	t.Helper()

	if err := s.Upsert(invoice); err != nil {
		t.Fatalf("Upsert(%s) failed: %v", invoice.ID, err)
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestListIsSortedNewestFirst(t *testing.T) {
	s := newTestStore(t)

	// Insertion order deliberately does not match date order.
	mustUpsert(t, s, models.Invoice{ID: "A", Date: day(2021, time.January, 1), Status: models.StatusSuccess})
	mustUpsert(t, s, models.Invoice{ID: "B", Date: day(2023, time.May, 5), Status: models.StatusSuccess})
	mustUpsert(t, s, models.Invoice{ID: "C", Date: day(2022, time.February, 2), Status: models.StatusSuccess})

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("List returned %d records, want 3", len(got))
	}
	wantOrder := []string{"B", "C", "A"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("List()[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestListRecentReturnsPrefix(t *testing.T) {
	s := newTestStore(t)

	mustUpsert(t, s, models.Invoice{ID: "A", Date: day(2021, time.January, 1)})
	mustUpsert(t, s, models.Invoice{ID: "B", Date: day(2023, time.May, 5)})
	mustUpsert(t, s, models.Invoice{ID: "C", Date: day(2022, time.February, 2)})

	got := s.ListRecent(2)
	if len(got) != 2 || got[0].ID != "B" || got[1].ID != "C" {
		t.Errorf("ListRecent(2) = %v, want [B C]", ids(got))
	}

	if got := s.ListRecent(10); len(got) != 3 {
		t.Errorf("ListRecent(10) returned %d records, want 3", len(got))
	}
}

func TestUpsertMergesAndPreservesCreatedAt(t *testing.T) {
	s := newTestStore(t)

	created := day(2024, time.March, 1)
	updated := day(2024, time.March, 2)
	s.now = func() time.Time { return created }

	mustUpsert(t, s, models.Invoice{
		ID:         "A1",
		Date:       day(2021, time.July, 21),
		Amount:     "10,00 €",
		InvoiceURL: "https://x/pdf",
		Status:     models.StatusPending,
	})

	s.now = func() time.Time { return updated }
	mustUpsert(t, s, models.Invoice{
		ID:            "A1",
		Status:        models.StatusSuccess,
		DriveFileID:   "file-1",
		DriveViewLink: "https://drive/file-1",
	})

	got, ok := s.Get("A1")
	if !ok {
		t.Fatal("record A1 missing after merge")
	}
	if len(s.List()) != 1 {
		t.Fatalf("store holds %d records after re-upsert of same id, want 1", len(s.List()))
	}
	if got.Status != models.StatusSuccess || got.DriveFileID != "file-1" {
		t.Errorf("merged record = %+v, want Success with drive identity", got)
	}
	if got.Amount != "10,00 €" || got.InvoiceURL != "https://x/pdf" {
		t.Errorf("merge dropped fields absent from the incoming record: %+v", got)
	}
	if !got.Date.Equal(day(2021, time.July, 21)) {
		t.Errorf("merge lost the order date: %v", got.Date)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want preserved %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want refreshed %v", got.UpdatedAt, updated)
	}
}

func TestMergeClearsErrorOnStatusTransition(t *testing.T) {
	s := newTestStore(t)

	mustUpsert(t, s, models.Invoice{ID: "A1", Status: models.StatusError, Error: "quota exceeded"})
	mustUpsert(t, s, models.Invoice{ID: "A1", Status: models.StatusSuccess, DriveFileID: "file-1"})

	got, _ := s.Get("A1")
	if got.Error != "" {
		t.Errorf("error text survived transition to Success: %q", got.Error)
	}
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	s := newTestStore(t)

	if err := s.Upsert(models.Invoice{Date: day(2021, time.July, 21)}); err == nil {
		t.Error("Upsert accepted a record without an id")
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mustUpsert(t, s, models.Invoice{ID: "A1", Date: day(2021, time.July, 21), Status: models.StatusSuccess})
	mustUpsert(t, s, models.Invoice{ID: "B2", Date: day(2022, time.July, 21), Status: models.StatusError, Error: "missing invoice URL"})

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}

	got := reopened.List()
	if len(got) != 2 {
		t.Fatalf("reopened store holds %d records, want 2", len(got))
	}
	if got[0].ID != "B2" || got[1].ID != "A1" {
		t.Errorf("reopened order = %v, want [B2 A1]", ids(got))
	}
	if got[0].Error != "missing invoice URL" {
		t.Errorf("error text lost across reopen: %+v", got[0])
	}
}

func TestOpenReportsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.json")
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrStorage) {
		t.Errorf("Open on corrupt file returned %v, want ErrStorage", err)
	}
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

func ids(invoices []models.Invoice) []string {
	out := make([]string, len(invoices))
	for i, invoice := range invoices {
		out[i] = invoice.ID
	}
	return out
}
