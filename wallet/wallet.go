// Package wallet implements the wallet microservice.
//
// This microservice implements a RESTful API for clients to create Stellar keypairs, query balances and submit
// signed operations (payments, escrows, signers, offers, trustlines, merges and split payments) to the configured
// ledger networks. Plain payments are kept in a transaction log from which history and analytics are served.
package wallet

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/tarancss/dwallet/lib/block"
	"github.com/tarancss/dwallet/lib/msg"
	"github.com/tarancss/dwallet/lib/store"
)

// Wallet contains the data necessary to deliver the service.
type Wallet struct {
	db     store.DB               // transaction log
	bc     map[string]block.Chain // ledger clients
	def    string                 // network used when requests do not name one
	mb     msg.MsgBroker
	origin string // allowed CORS origin

	mu sync.Mutex
	s  *http.Server // http server
	ss *http.Server // https server
}

// New returns a pointer to a new Wallet service.
func New(dbConn store.DB, mb msg.MsgBroker, bc map[string]block.Chain, def, origin string) *Wallet {
	if mb == nil {
		mb = msg.Nop{}
	}

	if origin == "" {
		origin = "*"
	}

	return &Wallet{
		db:     dbConn,
		mb:     mb,
		bc:     bc,
		def:    def,
		origin: origin,
	}
}

// Stop shuts down the http servers implementing the RESTful API and closes gracefully the connections to message
// broker, ledger networks and database.
func (w *Wallet) Stop() {
	w.mu.Lock()
	s, ss := w.s, w.ss
	w.mu.Unlock()

	// shutdown http servers
	if s != nil {
		if err := s.Shutdown(context.Background()); err != nil {
			slog.Error("http server shutdown", "error", err)
		}
	}

	if ss != nil {
		if err := ss.Shutdown(context.Background()); err != nil {
			slog.Error("https server shutdown", "error", err)
		}
	}

	// close message broker
	if err := w.mb.Close(); err != nil {
		slog.Error("closing message broker", "error", err)
	}

	block.End(w.bc)

	// close database
	if w.db != nil {
		err := w.db.Close()
		slog.Info("transaction log closed", "error", err)
	}
}

// networks returns the names of the configured networks, sorted.
func (w *Wallet) networks() []string {
	nets := make([]string, 0, len(w.bc))
	for n := range w.bc {
		nets = append(nets, n)
	}

	sort.Strings(nets)

	return nets
}

// chain returns the network selected by the request's net query, or the default network.
func (w *Wallet) chain(r *http.Request) (string, block.Chain, error) {
	net := r.URL.Query().Get("net")
	if net == "" {
		net = w.def
	}

	c, ok := w.bc[net]
	if !ok {
		return net, nil, fail(http.StatusNotFound, msgNoNet, ErrNoNet)
	}

	return net, c, nil
}

// publish sends a wallet event to the broker. Events are best effort, failures are only logged.
func (w *Wallet) publish(e msg.Event) {
	if err := w.mb.SendEvent(e); err != nil {
		slog.Warn("event not published", "net", e.Net, "kind", e.Kind, "hash", e.Hash, "error", err)
	}
}
