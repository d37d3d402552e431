package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
)

type stubFeed struct {
	ch chan domain.ReviewSnapshot
}

func (f *stubFeed) Snapshot() domain.ReviewSnapshot { return domain.ReviewSnapshot{} }

func (f *stubFeed) Subscribe() (<-chan domain.ReviewSnapshot, func()) {
	return f.ch, func() {}
}

func TestAdminHandler_ListTransactions(t *testing.T) {
	e := newTestEcho()
	ledger := &stubLedger{txs: []domain.Transaction{{ID: "tx_1", Status: domain.TxPending}}}
	h := NewAdminHandler(ledger, &stubFeed{}, zerolog.Nop())

	c, rec := newJSONContext(e, http.MethodGet, "/admin/transactions?status=pending", "")
	if err := h.ListTransactions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ledger.lastQuery != domain.TxPending {
		t.Fatalf("status filter not forwarded: %q", ledger.lastQuery)
	}
	var txs []domain.Transaction
	_ = json.Unmarshal(rec.Body.Bytes(), &txs)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	c, rec = newJSONContext(e, http.MethodGet, "/admin/transactions?status=bogus", "")
	if err := h.ListTransactions(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAdminHandler_Approve(t *testing.T) {
	e := newTestEcho()
	ledger := &stubLedger{setStatus: func(txID string, status domain.TransactionStatus) (*domain.Transaction, error) {
		if txID != "tx_1" || status != domain.TxApproved {
			t.Fatalf("unexpected args %s %s", txID, status)
		}
		return &domain.Transaction{ID: txID, Status: status}, nil
	}}
	h := NewAdminHandler(ledger, &stubFeed{}, zerolog.Nop())

	c, rec := newJSONContext(e, http.MethodPost, "/admin/transactions/tx_1/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("tx_1")
	asUser(c, "admin_001", domain.RoleAdmin)
	if err := h.Approve(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp reviewResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Transaction.Status != domain.TxApproved {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminHandler_Reject_Settled(t *testing.T) {
	e := newTestEcho()
	ledger := &stubLedger{setStatus: func(txID string, status domain.TransactionStatus) (*domain.Transaction, error) {
		return &domain.Transaction{ID: txID, Status: domain.TxApproved}, domain.ErrTransactionSettled
	}}
	h := NewAdminHandler(ledger, &stubFeed{}, zerolog.Nop())

	c, _ := newJSONContext(e, http.MethodPost, "/admin/transactions/tx_1/reject", "")
	c.SetParamNames("id")
	c.SetParamValues("tx_1")
	asUser(c, "admin_001", domain.RoleAdmin)
	if err := h.Reject(c); !errors.Is(err, domain.ErrTransactionSettled) {
		t.Fatalf("expected ErrTransactionSettled, got %v", err)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	e := newTestEcho()
	ledger := &stubLedger{users: map[string]*domain.User{"u1": {ID: "u1"}, "u2": {ID: "u2"}}}
	h := NewAdminHandler(ledger, &stubFeed{}, zerolog.Nop())

	c, rec := newJSONContext(e, http.MethodGet, "/admin/users", "")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var users []domain.User
	_ = json.Unmarshal(rec.Body.Bytes(), &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestAdminHandler_Feed(t *testing.T) {
	feed := &stubFeed{ch: make(chan domain.ReviewSnapshot, 1)}
	h := NewAdminHandler(&stubLedger{}, feed, zerolog.Nop())

	e := echo.New()
	e.GET("/admin/feed", h.Feed)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/admin/feed", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	feed.ch <- domain.ReviewSnapshot{Pending: []domain.Transaction{{ID: "tx_1"}}, At: time.Now()}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap domain.ReviewSnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(snap.Pending) != 1 || snap.Pending[0].ID != "tx_1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
