package wallet

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const timeout = 15

// Handler returns the RESTful API of the wallet service.
func (w *Wallet) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", w.homeHandler).Methods(http.MethodGet)
	r.HandleFunc("/networks", w.networksHandler).Methods(http.MethodGet)                   // configured networks
	r.HandleFunc("/create-wallet", w.createWalletHandler).Methods(http.MethodPost)         // new keypair
	r.HandleFunc("/balance/{publicKey}", w.balanceHandler).Methods(http.MethodGet)         // account balances
	r.HandleFunc("/send-payment", w.sendPaymentHandler).Methods(http.MethodPost)           // native payment
	r.HandleFunc("/create-escrow", w.createEscrowHandler).Methods(http.MethodPost)         // payment to an escrow
	r.HandleFunc("/add-signer", w.addSignerHandler).Methods(http.MethodPost)               // set options signer
	r.HandleFunc("/create-offer", w.createOfferHandler).Methods(http.MethodPost)           // manage sell offer
	r.HandleFunc("/add-trustline", w.addTrustlineHandler).Methods(http.MethodPost)         // change trust
	r.HandleFunc("/merge-account", w.mergeAccountHandler).Methods(http.MethodPost)         // account merge
	r.HandleFunc("/split-payment", w.splitPaymentHandler).Methods(http.MethodPost)         // n payments, one tx
	r.HandleFunc("/resolve-federated-address/{federatedAddress}", w.resolveHandler).Methods(http.MethodGet)
	r.HandleFunc("/transaction-history/{publicKey}", w.historyHandler).Methods(http.MethodGet)
	r.HandleFunc("/transaction-analytics/{publicKey}", w.analyticsHandler).Methods(http.MethodGet)
	r.PathPrefix("/ui/").Handler(http.StripPrefix("/ui/", uiHandler())).Methods(http.MethodGet)
	r.Use(instrument)

	return requestID(logRequests(cors(w.origin, r)))
}

// Init sets up and starts the http/https server to service the RESTful API for a wallet service. If sslPort, sslCert
// and sslKey are informed, it will start an https (TLS) server on the specified endpoint. It blocks until both servers
// are shut down with Stop or one of them fails.
func (w *Wallet) Init(endpoint, port, sslPort, sslCert, sslKey string) error {
	h := w.Handler()

	var g errgroup.Group

	w.mu.Lock()
	// start http server
	if port != "" {
		w.s = server(h, endpoint+":"+port)
		s := w.s

		g.Go(func() error { return served(s.ListenAndServe()) })

		slog.Info("listening to API http requests", "endpoint", endpoint, "port", port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		w.ss = server(h, endpoint+":"+sslPort)
		ss := w.ss

		g.Go(func() error { return served(ss.ListenAndServeTLS(sslCert, sslKey)) })

		slog.Info("listening to API https requests", "endpoint", endpoint, "port", sslPort)
	}
	w.mu.Unlock()

	return g.Wait()
}

func server(h http.Handler, addr string) *http.Server {
	return &http.Server{
		Handler:           h,
		Addr:              addr,
		WriteTimeout:      timeout * time.Second,
		ReadTimeout:       timeout * time.Second,
		ReadHeaderTimeout: timeout * time.Second,
	}
}

// served hides the error returned by a graceful shutdown.
func served(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
