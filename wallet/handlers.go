package wallet

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tarancss/dwallet/lib/block/types"
	"github.com/tarancss/dwallet/lib/util"
)

// Home is the liveness text replied on the root path.
const Home = "Decentralized Wallet Backend is running!"

// errorBody is the JSON replied to requests that fail.
type errorBody struct {
	Error string `json:"error"`
}

// reply writes res as JSON with status, or the client message of err with its status. It is deferred by every
// handler.
func reply(rw http.ResponseWriter, r *http.Request, status int, res interface{}, err error) {
	if err != nil {
		var ae *apiError
		if !errors.As(err, &ae) {
			ae = &apiError{status: http.StatusBadRequest, msg: err.Error(), err: err}
		}

		status = ae.status
		res = errorBody{Error: ae.msg}

		slog.Warn("httpreq failed", "id", reqID(r), "path", r.URL.Path, "status", status, "error", ae.err)
	}

	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(res)
}

// decode reads the JSON body of r into v.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fail(http.StatusBadRequest, msgBadRequest, errors.Join(ErrBadRequest, err))
	}

	return nil
}

// homeHandler just replies the liveness text to the client.
func (w *Wallet) homeHandler(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(rw, Home)
}

// Networks is the reply of the networks endpoint.
type Networks struct {
	Networks []string `json:"networks"`
	Default  string   `json:"default"`
}

// networksHandler replies the networks available to the wallet.
func (w *Wallet) networksHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, http.StatusOK, Networks{Networks: w.networks(), Default: w.def}, nil)
}

// Keys is a new keypair. The secret is replied once and never kept.
type Keys struct {
	PublicKey string `json:"publicKey"`
	Secret    string `json:"secret"`
}

// createWalletHandler replies a new random keypair. The account is not created on the ledger until funded.
func (w *Wallet) createWalletHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Keys

	defer func() { reply(rw, r, http.StatusOK, res, err) }()

	_, c, err := w.chain(r)
	if err != nil {
		return
	}

	if res.PublicKey, res.Secret, err = c.NewKeys(); err == nil {
		slog.Info("keypair created", "id", reqID(r), "publicKey", util.Short(res.PublicKey))
	}
}

// AssetBalance is the balance of an account in one asset.
type AssetBalance struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

// Balances is the reply of the balance endpoint.
type Balances struct {
	PublicKey string         `json:"publicKey"`
	Balances  []AssetBalance `json:"balances"`
}

// balanceHandler replies the balances of the account requested.
func (w *Wallet) balanceHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Balances

	defer func() { reply(rw, r, http.StatusOK, res, err) }()

	_, c, err := w.chain(r)
	if err != nil {
		return
	}

	res.PublicKey = mux.Vars(r)["publicKey"]
	if !c.Valid(res.PublicKey) {
		err = fail(http.StatusBadRequest, msgBalanceFailed, types.ErrBadAddress)

		return
	}

	acc, e := c.Account(res.PublicKey)
	if e != nil {
		if errors.Is(e, types.ErrNoAccount) {
			err = fail(http.StatusNotFound, msgUnfunded, e)
		} else {
			err = fail(http.StatusBadRequest, msgBalanceFailed, e)
		}

		return
	}

	res.Balances = make([]AssetBalance, 0, len(acc.Balances))
	for _, b := range acc.Balances {
		code := b.Asset.Code
		if b.Asset.Native() {
			code = types.NativeCode
		}

		res.Balances = append(res.Balances, AssetBalance{Asset: code, Balance: b.Balance})
	}
}

// Resolved is the reply of the federation endpoint.
type Resolved struct {
	PublicKey string `json:"publicKey"`
}

// resolveHandler replies the account a federated address (name*domain) points to. Plain account addresses are
// replied as they are once found on the ledger.
func (w *Wallet) resolveHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Resolved

	defer func() { reply(rw, r, http.StatusOK, res, err) }()

	_, c, err := w.chain(r)
	if err != nil {
		return
	}

	if res.PublicKey, err = c.Resolve(mux.Vars(r)["federatedAddress"]); err != nil {
		err = fail(http.StatusBadRequest, msgResolveFailed, err)
	}
}
