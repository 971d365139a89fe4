package wallet

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tarancss/dwallet/lib/store"
)

// History is the reply of the transaction history endpoint.
type History struct {
	PublicKey    string              `json:"publicKey"`
	Transactions []store.Transaction `json:"transactions"`
}

// Analytics summarises the payments sent by an account. Amounts are rounded to 2 decimals.
type Analytics struct {
	TotalXlmSent     string `json:"totalXlmSent"`
	AverageTxSize    string `json:"averageTxSize"`
	TransactionCount int    `json:"transactionCount"`
}

// analyze returns the analytics of txs, which must not be empty.
func analyze(txs []store.Transaction) (Analytics, error) {
	total := decimal.Zero

	for _, t := range txs {
		a, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return Analytics{}, fmt.Errorf("%w: tx %s amount %q", ErrBadAnalysis, t.ID, t.Amount)
		}

		total = total.Add(a)
	}

	n := decimal.NewFromInt(int64(len(txs)))

	return Analytics{
		TotalXlmSent:     total.StringFixed(2),
		AverageTxSize:    total.DivRound(n, 16).StringFixed(2),
		TransactionCount: len(txs),
	}, nil
}

// sent returns the payments recorded for the account in the request path. It fails with status 404 when there are
// none and with status 500 and the message failed when the store does.
func (w *Wallet) sent(r *http.Request, failed string) (string, []store.Transaction, error) {
	pk := mux.Vars(r)["publicKey"]

	txs, err := w.db.GetTxs(r.Context(), pk)
	if err != nil {
		return pk, nil, fail(http.StatusInternalServerError, failed, errors.Join(ErrStore, err))
	}

	if len(txs) == 0 {
		return pk, nil, fail(http.StatusNotFound, msgNoHistory, ErrNoHistory)
	}

	return pk, txs, nil
}

// historyHandler replies the payments sent by an account.
func (w *Wallet) historyHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res History

	defer func() { reply(rw, r, http.StatusOK, res, err) }()

	res.PublicKey, res.Transactions, err = w.sent(r, msgHistoryFailed)
}

// analyticsHandler replies the totals of the payments sent by an account.
func (w *Wallet) analyticsHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Analytics

	defer func() { reply(rw, r, http.StatusOK, res, err) }()

	_, txs, err := w.sent(r, msgAnalyticsFailed)
	if err != nil {
		return
	}

	if res, err = analyze(txs); err != nil {
		err = fail(http.StatusInternalServerError, msgAnalyticsFailed, err)
	}
}
