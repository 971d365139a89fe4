// Package stellartest provides a mock Horizon server for tests. It serves account details for the accounts it has
// been told about, accepts transaction submissions and records them, and can be set to reject submissions with
// given result codes.
package stellartest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/stellar/go/txnbuild"
)

// Horizon is a mock Horizon server.
type Horizon struct {
	*httptest.Server

	passphrase string

	mu        sync.Mutex
	accounts  map[string][]balance
	submitted []*txnbuild.Transaction
	reject    map[string]interface{}
	hits      int
	ledger    int32
}

type balance struct {
	Balance string `json:"balance"`
	Type    string `json:"asset_type"`
	Code    string `json:"asset_code,omitempty"`
	Issuer  string `json:"asset_issuer,omitempty"`
}

// New starts a mock Horizon for the network identified by passphrase. Close it when done.
func New(passphrase string) *Horizon {
	h := &Horizon{passphrase: passphrase, accounts: make(map[string][]balance), ledger: 1000}
	h.Server = httptest.NewServer(http.HandlerFunc(h.handle))

	return h
}

// Fund makes the account exist with the given native balance.
func (h *Horizon) Fund(id, native string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.accounts[id] = append(h.accounts[id], balance{Balance: native, Type: "native"})
}

// Credit adds a non native balance to an existing account.
func (h *Horizon) Credit(id, code, issuer, amount string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.accounts[id] = append(h.accounts[id], balance{Balance: amount, Type: "credit_alphanum4", Code: code, Issuer: issuer})
}

// Reject makes every following submission fail with the transaction and operation result codes given. An empty
// txCode accepts submissions again.
func (h *Horizon) Reject(txCode string, opCodes ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if txCode == "" {
		h.reject = nil

		return
	}

	h.reject = map[string]interface{}{"transaction": txCode}
	if len(opCodes) > 0 {
		h.reject["operations"] = opCodes
	}
}

// Submitted returns the transactions received so far, accepted or not.
func (h *Horizon) Submitted() []*txnbuild.Transaction {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]*txnbuild.Transaction(nil), h.submitted...)
}

// Hits returns the number of requests served.
func (h *Horizon) Hits() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.hits
}

func (h *Horizon) handle(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hits++

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/accounts/") &&
		strings.Count(r.URL.Path, "/") == 2:
		h.account(w, strings.TrimPrefix(r.URL.Path, "/accounts/"))
	case r.Method == http.MethodPost && r.URL.Path == "/transactions":
		h.submit(w, r)
	default:
		notFound(w)
	}
}

func (h *Horizon) account(w http.ResponseWriter, id string) {
	bals, ok := h.accounts[id]
	if !ok {
		notFound(w)

		return
	}

	reply(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"account_id": id,
		"sequence":   "4294967296",
		"balances":   bals,
	})
}

func (h *Horizon) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		problem(w, http.StatusBadRequest, "Bad Request", nil)

		return
	}

	gtx, err := txnbuild.TransactionFromXDR(r.PostForm.Get("tx"))
	if err != nil {
		problem(w, http.StatusBadRequest, "Transaction Malformed", nil)

		return
	}

	tx, ok := gtx.Transaction()
	if !ok {
		problem(w, http.StatusBadRequest, "Transaction Malformed", nil)

		return
	}

	h.submitted = append(h.submitted, tx)

	if h.reject != nil {
		problem(w, http.StatusBadRequest, "Transaction Failed", map[string]interface{}{"result_codes": h.reject})

		return
	}

	hash, err := tx.HashHex(h.passphrase)
	if err != nil {
		problem(w, http.StatusInternalServerError, "Internal Server Error", nil)

		return
	}

	env, _ := tx.Base64()
	h.ledger++

	reply(w, http.StatusOK, map[string]interface{}{
		"id":              hash,
		"hash":            hash,
		"ledger":          h.ledger,
		"successful":      true,
		"source_account":  tx.SourceAccount().AccountID,
		"fee_charged":     "100",
		"operation_count": len(tx.Operations()),
		"envelope_xdr":    env,
		"result_xdr":      "AAAAAAAAAGQAAAAAAAAAAQAAAAAAAAABAAAAAAAAAAA=",
		"created_at":      time.Now().UTC().Format(time.RFC3339),
	})
}

func notFound(w http.ResponseWriter) {
	problem(w, http.StatusNotFound, "Resource Missing", nil)
}

func problem(w http.ResponseWriter, status int, title string, extras map[string]interface{}) {
	typ := "https://stellar.org/horizon-errors/"

	switch status {
	case http.StatusNotFound:
		typ += "not_found"
	case http.StatusBadRequest:
		typ += "transaction_failed"
	default:
		typ += "server_error"
	}

	p := map[string]interface{}{"type": typ, "title": title, "status": status, "detail": title}
	if extras != nil {
		p["extras"] = extras
	}

	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

func reply(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/hal+json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
