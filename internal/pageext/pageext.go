// Package pageext defines the page-extraction channel: the boundary through
// which a browser-side scraper delivers raw order batches to the pipeline.
//
// DOM scraping itself stays outside this repository. The companion script
// running in the browser polls the ingress for pending extraction requests,
// scrapes the order-history page for the requested domain and year, and posts
// back exactly one reply per request: either the order batch or an
// authentication-required signal (the user was redirected to a login page).
package pageext

import (
	"context"
	"errors"

	"invoicesync/pkg/models"
)

// RawOrder is one order as scraped from an order-history page, before any
// normalization. Date is the raw page text; Amount and URL may be empty.
type RawOrder struct {
	InvoiceID string        `json:"invoiceId"`
	Date      string        `json:"date"`
	Amount    string        `json:"amount"`
	URL       string        `json:"url"`
	Items     []models.Item `json:"items"`
}

// Extractor obtains the current raw order list for a domain and year. A single
// call owns exactly one response slot: the reply that resolves it can never
// leak into a later call.
type Extractor interface {
	Extract(ctx context.Context, domain string, year int) ([]RawOrder, error)
}

// ErrAuthenticationRequired signals that the scraper hit a login challenge
// instead of an order list. Callers treat it as "nothing to sync this run",
// not as a hard failure.
var ErrAuthenticationRequired = errors.New("page extraction requires authentication")
