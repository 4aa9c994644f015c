package models

import "time"

// SyncStatus describes the synchronization state of an invoice record.
type SyncStatus string

const (
	// StatusPending is the acquisition-time default. It is transient: a completed
	// synchronization pass always resolves it to StatusSuccess or StatusError
	// before the record is persisted.
	StatusPending SyncStatus = "Pending"

	// StatusSuccess means the invoice document was fetched and uploaded to the
	// remote folder. The record carries the remote file identity.
	StatusSuccess SyncStatus = "Success"

	// StatusError means fetching or uploading the document failed. The record
	// carries a human-readable reason.
	StatusError SyncStatus = "Error"
)

// Item is one line item of an order.
type Item struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Invoice is one purchase transaction on the source retail site, keyed by its
// business order id. There is at most one record per id in the store.
type Invoice struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	Amount        string     `json:"amount"`
	InvoiceURL    string     `json:"invoiceUrl,omitempty"`
	Items         []Item     `json:"items"`
	Status        SyncStatus `json:"status"`
	Error         string     `json:"error,omitempty"`
	DriveFileID   string     `json:"driveFileId,omitempty"`
	DriveViewLink string     `json:"driveViewLink,omitempty"`

	// CreatedAt and UpdatedAt are maintained by the store: CreatedAt is set on
	// first insert and never changes, UpdatedAt is refreshed on every upsert.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SyncResult is the aggregate outcome of one synchronization run. Count is the
// number of invoices that reached StatusSuccess during the run; per-order
// errors do not make the run itself fail.
type SyncResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}
