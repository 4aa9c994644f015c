package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoicesync/internal/pageext"
	"invoicesync/pkg/models"
)

type fakeExtractor struct {
	orders []pageext.RawOrder
	err    error

	gotDomain string
	gotYear   int
}

func (f *fakeExtractor) Extract(ctx context.Context, domain string, year int) ([]pageext.RawOrder, error) {
	f.gotDomain = domain
	f.gotYear = year
	return f.orders, f.err
}

func TestAcquireNormalizesRawOrders(t *testing.T) {
	extractor := &fakeExtractor{orders: []pageext.RawOrder{
		{
			InvoiceID: "A1",
			Date:      "21 juillet 2021",
			Amount:    "10,00 €",
			URL:       "https://x/pdf",
			Items:     []models.Item{{Name: "Book", Price: "10,00 €"}},
		},
		{
			InvoiceID: "B2",
			Date:      "2021-07-22",
			// Amount, URL and Items deliberately absent.
		},
	}}

	s := New(extractor, time.Second)
	orders, err := s.Acquire(context.Background(), "amazon.fr", 2021)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if extractor.gotDomain != "amazon.fr" || extractor.gotYear != 2021 {
		t.Errorf("extractor called with %s/%d, want amazon.fr/2021", extractor.gotDomain, extractor.gotYear)
	}
	if len(orders) != 2 {
		t.Fatalf("Acquire returned %d orders, want 2", len(orders))
	}

	first := orders[0]
	wantDate := time.Date(2021, time.July, 21, 0, 0, 0, 0, time.UTC)
	if first.ID != "A1" || !first.Date.Equal(wantDate) || first.Amount != "10,00 €" {
		t.Errorf("first order = %+v, want A1 on %v", first, wantDate)
	}
	if first.Status != models.StatusPending {
		t.Errorf("first order status = %s, want Pending", first.Status)
	}

	second := orders[1]
	if second.Amount != "N/A" {
		t.Errorf("missing amount defaulted to %q, want \"N/A\"", second.Amount)
	}
	if second.Items == nil || len(second.Items) != 0 {
		t.Errorf("missing items defaulted to %v, want empty non-nil slice", second.Items)
	}
	if second.InvoiceURL != "" {
		t.Errorf("missing URL defaulted to %q, want empty", second.InvoiceURL)
	}
}

func TestAcquireFallsBackToNowForUnparseableDates(t *testing.T) {
	extractor := &fakeExtractor{orders: []pageext.RawOrder{
		{InvoiceID: "A1", Date: "not a date"},
	}}

	s := New(extractor, time.Second)
	frozen := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	orders, err := s.Acquire(context.Background(), "amazon.fr", 2021)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if !orders[0].Date.Equal(frozen) {
		t.Errorf("fallback date = %v, want %v", orders[0].Date, frozen)
	}
}

func TestAcquireSkipsOrdersWithoutID(t *testing.T) {
	extractor := &fakeExtractor{orders: []pageext.RawOrder{
		{InvoiceID: "", Date: "2021-07-21"},
		{InvoiceID: "A1", Date: "2021-07-21"},
	}}

	s := New(extractor, time.Second)
	orders, err := s.Acquire(context.Background(), "amazon.fr", 2021)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "A1" {
		t.Errorf("Acquire returned %+v, want only A1", orders)
	}
}

func TestAcquireRecoversAuthenticationChallengeAsEmpty(t *testing.T) {
	extractor := &fakeExtractor{err: pageext.ErrAuthenticationRequired}

	s := New(extractor, time.Second)
	orders, err := s.Acquire(context.Background(), "amazon.fr", 2021)
	if err != nil {
		t.Fatalf("Acquire returned error %v, want recovered empty result", err)
	}
	if len(orders) != 0 {
		t.Errorf("Acquire returned %d orders, want 0", len(orders))
	}
}

func TestAcquirePropagatesOtherExtractionFailures(t *testing.T) {
	boom := errors.New("bridge is down")
	extractor := &fakeExtractor{err: boom}

	s := New(extractor, time.Second)
	if _, err := s.Acquire(context.Background(), "amazon.fr", 2021); !errors.Is(err, boom) {
		t.Errorf("Acquire error = %v, want wrapped %v", err, boom)
	}
}
