package pageext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicesync/pkg/models"
)

type pendingList struct {
	Requests []struct {
		ID     string `json:"id"`
		Domain string `json:"domain"`
		Year   int    `json:"year"`
	} `json:"requests"`
}

// waitForPending polls the ingress until a pending request shows up.
func waitForPending(t *testing.T, url string) pendingList {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/v1/extractions")
		if err != nil {
			t.Fatalf("listing pending extractions: %v", err)
		}
		var list pendingList
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("decoding pending list: %v", err)
		}
		resp.Body.Close()
		if len(list.Requests) > 0 {
			return list
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no pending extraction request appeared")
	return pendingList{}
}

func postReply(t *testing.T, url, id string, reply any) *http.Response {
	t.Helper()

	body, err := json.Marshal(reply)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url+"/v1/extractions/"+id, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("posting reply: %v", err)
	}
	resp.Body.Close()
	return resp
}

func TestExtractReceivesSingleReply(t *testing.T) {
	bridge := NewBridge()
	server := httptest.NewServer(bridge)
	defer server.Close()

	type result struct {
		orders []RawOrder
		err    error
	}
	done := make(chan result, 1)
	go func() {
		orders, err := bridge.Extract(context.Background(), "amazon.fr", 2021)
		done <- result{orders, err}
	}()

	list := waitForPending(t, server.URL)
	if list.Requests[0].Domain != "amazon.fr" || list.Requests[0].Year != 2021 {
		t.Errorf("pending request = %+v, want amazon.fr/2021", list.Requests[0])
	}

	resp := postReply(t, server.URL, list.Requests[0].ID, map[string]any{
		"invoices": []RawOrder{{
			InvoiceID: "A1",
			Date:      "21/07/2021",
			Amount:    "10,00 €",
			URL:       "https://x/pdf",
			Items:     []models.Item{},
		}},
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("reply status = %d, want 202", resp.StatusCode)
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("Extract returned error: %v", res.err)
	}
	if len(res.orders) != 1 || res.orders[0].InvoiceID != "A1" {
		t.Errorf("Extract returned %+v, want the posted batch", res.orders)
	}

	// The slot is one-shot: a second reply for the same id must be rejected.
	resp = postReply(t, server.URL, list.Requests[0].ID, map[string]any{"invoices": []RawOrder{}})
	if resp.StatusCode != http.StatusGone {
		t.Errorf("duplicate reply status = %d, want 410", resp.StatusCode)
	}
}

func TestExtractReportsAuthenticationChallenge(t *testing.T) {
	bridge := NewBridge()
	server := httptest.NewServer(bridge)
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		_, err := bridge.Extract(context.Background(), "amazon.de", 2023)
		done <- err
	}()

	list := waitForPending(t, server.URL)
	postReply(t, server.URL, list.Requests[0].ID, map[string]any{"authenticationRequired": true})

	if err := <-done; !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("Extract error = %v, want ErrAuthenticationRequired", err)
	}
}

func TestExtractTimesOutWithoutReply(t *testing.T) {
	bridge := NewBridge()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := bridge.Extract(ctx, "amazon.fr", 2021)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Extract error = %v, want deadline exceeded", err)
	}
}

func TestReplyForUnknownRequestIsRejected(t *testing.T) {
	bridge := NewBridge()
	server := httptest.NewServer(bridge)
	defer server.Close()

	resp := postReply(t, server.URL, "no-such-id", map[string]any{"invoices": []RawOrder{}})
	if resp.StatusCode != http.StatusGone {
		t.Errorf("unknown-id reply status = %d, want 410", resp.StatusCode)
	}
}
