package wallet

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tarancss/dwallet/lib/block"
	"github.com/tarancss/dwallet/lib/block/stellar"
	"github.com/tarancss/dwallet/lib/block/types"
	"github.com/tarancss/dwallet/lib/msg"
	"github.com/tarancss/dwallet/lib/store"
	"github.com/tarancss/dwallet/lib/util"
)

// decimals is the precision of ledger amounts.
const decimals = 7

// storeTimeout bounds the write of a payment record once the ledger accepted it.
const storeTimeout = 10 * time.Second

// maxExp is the largest exponent of a number below 2^63, the range of ledger amounts and price terms.
const maxExp = 18

var (
	// maxAmount is the largest amount the ledger holds, 2^63-1 stroops.
	maxAmount = decimal.New(math.MaxInt64, -decimals)
	// maxPrice keeps both terms of a price within 32 bits.
	maxPrice = decimal.NewFromInt(math.MaxInt32)
	// maxWeight is the largest signer weight.
	maxWeight = decimal.NewFromInt(math.MaxUint8)
)

// PaymentReq is the request of the send-payment endpoint.
type PaymentReq struct {
	SourceSecret string          `json:"sourceSecret"`
	Destination  string          `json:"destinationPublicKey"`
	Amount       decimal.Decimal `json:"amount"`
}

// EscrowReq is the request of the create-escrow endpoint.
type EscrowReq struct {
	SourceSecret string          `json:"sourceSecret"`
	Escrow       string          `json:"escrowPublicKey"`
	Amount       decimal.Decimal `json:"amount"`
}

// SignerReq is the request of the add-signer endpoint. The weight is required and a zero weight removes the signer.
type SignerReq struct {
	SourceSecret string           `json:"sourceSecret"`
	Signer       string           `json:"signerPublicKey"`
	Weight       *decimal.Decimal `json:"weight"`
}

// OfferReq is the request of the create-offer endpoint. Issuers default to the caller's account.
type OfferReq struct {
	SourceSecret  string          `json:"sourceSecret"`
	Selling       string          `json:"sellingAssetCode"`
	Buying        string          `json:"buyingAssetCode"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	SellingIssuer string          `json:"sellingAssetIssuer,omitempty"`
	BuyingIssuer  string          `json:"buyingAssetIssuer,omitempty"`
}

// TrustReq is the request of the add-trustline endpoint.
type TrustReq struct {
	SourceSecret string `json:"sourceSecret"`
	Code         string `json:"assetCode"`
	Issuer       string `json:"assetIssuer"`
}

// MergeReq is the request of the merge-account endpoint.
type MergeReq struct {
	SourceSecret string `json:"sourceSecret"`
	Destination  string `json:"destinationPublicKey"`
}

// Split is one of the payments of a split payment.
type Split struct {
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

// SplitReq is the request of the split-payment endpoint.
type SplitReq struct {
	SourceSecret string  `json:"sourceSecret"`
	Splits       []Split `json:"splits"`
}

// Submitted is the reply of every signed operation.
type Submitted struct {
	Success bool        `json:"success"`
	Result  types.Trans `json:"result"`
}

// fits returns true when a is positive, not above limit and has no more than 7 decimals. The exponent is checked
// first so that no comparison rescales a huge coefficient.
func fits(a, limit decimal.Decimal) bool {
	if !a.IsPositive() || a.Exponent() > maxExp {
		return false
	}

	// below the ledger precision whatever the coefficient
	if a.Exponent() < -decimals && -decimals-int(a.Exponent()) > a.NumDigits() {
		return false
	}

	return a.Equal(a.Truncate(decimals)) && a.LessThanOrEqual(limit)
}

// validAmount returns true for positive amounts the ledger can represent.
func validAmount(a decimal.Decimal) bool {
	return fits(a, maxAmount)
}

// validPrice returns true for positive prices the ledger can represent.
func validPrice(p decimal.Decimal) bool {
	return fits(p, maxPrice)
}

// signerWeight returns the weight w as a signer weight, false when it is missing or out of 0..255.
func signerWeight(w *decimal.Decimal) (uint8, bool) {
	if w == nil || w.IsNegative() || w.Exponent() > 3 || w.Exponent() < -decimals {
		return 0, false
	}

	if !w.IsInteger() || w.GreaterThan(maxWeight) {
		return 0, false
	}

	return uint8(w.IntPart()), true
}

// payment checks a payment-shaped request locally so that bad requests never reach the ledger.
func payment(c block.Chain, dest string, amount decimal.Decimal) error {
	if !validAmount(amount) {
		return fail(http.StatusBadRequest, msgBadAmount, ErrBadAmount)
	}

	if !c.Valid(dest) {
		return fail(http.StatusBadRequest, msgBadDestination, types.ErrBadAddress)
	}

	return nil
}

// submit derives the caller's account from seed, loads it, checks it holds at least need of the native asset and
// sends the operations built by ops. ops receives the caller's address.
func (w *Wallet) submit(net string, c block.Chain, kind, seed string, need decimal.Decimal,
	ops func(src string) []types.Op,
) (types.Account, types.Trans, error) {
	addr, err := c.Address(seed)
	if err != nil {
		return types.Account{}, types.Trans{}, err
	}

	acc, err := c.Account(addr)
	if err != nil {
		return acc, types.Trans{}, err
	}

	if need.IsPositive() && acc.NativeBalance().LessThan(need) {
		return acc, types.Trans{}, fail(http.StatusBadRequest, msgUnderfunded, types.ErrUnderfunded)
	}

	res, err := c.Send(seed, acc, ops(acc.ID)...)
	submitted(net, kind, err)

	if err != nil {
		slog.Warn("ledger submission failed", "net", net, "kind", kind, "source", util.Short(acc.ID), "error", err)

		return acc, res, err
	}

	slog.Info("ledger submission", "net", net, "kind", kind, "source", util.Short(acc.ID), "hash", res.Hash,
		"ledger", res.Ledger)

	return acc, res, nil
}

// sendPaymentHandler sends a native payment and records it in the transaction log.
func (w *Wallet) sendPaymentHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgPaymentFailed)) }()

	var req PaymentReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	if err = payment(c, req.Destination, req.Amount); err != nil {
		return
	}

	acc, tx, err := w.submit(net, c, msg.PAYMENT, req.SourceSecret, req.Amount, func(string) []types.Op {
		return []types.Op{types.Payment{To: req.Destination, Amount: req.Amount}}
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	rec := store.Transaction{
		Net:         net,
		Source:      acc.ID,
		Destination: req.Destination,
		Amount:      req.Amount.String(),
		Hash:        tx.Hash,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err = w.db.AddTx(ctx, rec); err != nil {
		err = fail(http.StatusInternalServerError, msgPaymentNotSaved, errors.Join(ErrStore, err))

		return
	}

	e := msg.NewEvent(net, msg.PAYMENT, tx.Hash, acc.ID)
	e.Destinations, e.Amount = []string{req.Destination}, req.Amount.String()
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}

// createEscrowHandler sends a native payment to an escrow account.
func (w *Wallet) createEscrowHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgEscrowFailed)) }()

	var req EscrowReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	if err = payment(c, req.Escrow, req.Amount); err != nil {
		return
	}

	acc, tx, err := w.submit(net, c, msg.ESCROW, req.SourceSecret, req.Amount, func(string) []types.Op {
		return []types.Op{types.Payment{To: req.Escrow, Amount: req.Amount}}
	})
	if err != nil {
		return
	}

	e := msg.NewEvent(net, msg.ESCROW, tx.Hash, acc.ID)
	e.Destinations, e.Amount = []string{req.Escrow}, req.Amount.String()
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}

// addSignerHandler adds, updates or removes a signer of the caller's account.
func (w *Wallet) addSignerHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgSignerFailed)) }()

	var req SignerReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	if !c.Valid(req.Signer) {
		err = fail(http.StatusBadRequest, msgBadSigner, types.ErrBadAddress)

		return
	}

	weight, ok := signerWeight(req.Weight)
	if !ok {
		err = fail(http.StatusBadRequest, msgBadWeight, ErrBadWeight)

		return
	}

	acc, tx, err := w.submit(net, c, msg.SIGNER, req.SourceSecret, decimal.Zero, func(string) []types.Op {
		return []types.Op{types.Signer{Key: req.Signer, Weight: weight}}
	})
	if err != nil {
		return
	}

	e := msg.NewEvent(net, msg.SIGNER, tx.Hash, acc.ID)
	e.Destinations = []string{req.Signer}
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}

// offerAsset returns the asset of an offer side. The native code without issuer is the native asset, otherwise the
// issuer defaults to the caller.
func offerAsset(code, issuer, caller string) types.Asset {
	if issuer == "" && strings.EqualFold(code, types.NativeCode) {
		return types.Asset{Code: types.NativeCode}
	}

	if issuer == "" {
		issuer = caller
	}

	return types.Asset{Code: code, Issuer: issuer}
}

// createOfferHandler creates an offer to sell an asset for another at a price.
func (w *Wallet) createOfferHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgOfferFailed)) }()

	var req OfferReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	switch {
	case req.Selling == "" || req.Buying == "":
		err = fail(http.StatusBadRequest, msgBadAsset, ErrBadAsset)
	case !validAmount(req.Amount):
		err = fail(http.StatusBadRequest, msgBadAmount, ErrBadAmount)
	case !validPrice(req.Price):
		err = fail(http.StatusBadRequest, msgBadPrice, ErrBadAmount)
	case req.SellingIssuer != "" && !c.Valid(req.SellingIssuer), req.BuyingIssuer != "" && !c.Valid(req.BuyingIssuer):
		err = fail(http.StatusBadRequest, msgBadIssuer, types.ErrBadAddress)
	}

	if err != nil {
		return
	}

	acc, tx, err := w.submit(net, c, msg.OFFER, req.SourceSecret, decimal.Zero, func(src string) []types.Op {
		return []types.Op{types.SellOffer{
			Selling: offerAsset(req.Selling, req.SellingIssuer, src),
			Buying:  offerAsset(req.Buying, req.BuyingIssuer, src),
			Amount:  req.Amount,
			Price:   req.Price,
		}}
	})
	if err != nil {
		return
	}

	e := msg.NewEvent(net, msg.OFFER, tx.Hash, acc.ID)
	e.Amount = req.Amount.String()
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}

// addTrustlineHandler makes the caller's account trust an asset.
func (w *Wallet) addTrustlineHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgTrustFailed)) }()

	var req TrustReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	if req.Code == "" {
		err = fail(http.StatusBadRequest, msgBadAsset, ErrBadAsset)

		return
	}

	if !c.Valid(req.Issuer) {
		err = fail(http.StatusBadRequest, msgBadIssuer, types.ErrBadAddress)

		return
	}

	acc, tx, err := w.submit(net, c, msg.TRUSTLINE, req.SourceSecret, decimal.Zero, func(string) []types.Op {
		return []types.Op{types.Trust{Asset: types.Asset{Code: req.Code, Issuer: req.Issuer}}}
	})
	if err != nil {
		return
	}

	e := msg.NewEvent(net, msg.TRUSTLINE, tx.Hash, acc.ID)
	e.Destinations = []string{req.Issuer}
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}

// mergeAccountHandler merges the caller's account into the destination.
func (w *Wallet) mergeAccountHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgMergeFailed)) }()

	var req MergeReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	if !c.Valid(req.Destination) {
		err = fail(http.StatusBadRequest, msgBadDestination, types.ErrBadAddress)

		return
	}

	acc, tx, err := w.submit(net, c, msg.MERGE, req.SourceSecret, decimal.Zero, func(string) []types.Op {
		return []types.Op{types.Merge{To: req.Destination}}
	})
	if err != nil {
		return
	}

	e := msg.NewEvent(net, msg.MERGE, tx.Hash, acc.ID)
	e.Destinations = []string{req.Destination}
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}

// splitPaymentHandler sends one transaction with a native payment per split, in request order. Split payments are
// not recorded in the transaction log.
func (w *Wallet) splitPaymentHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Submitted

	defer func() { reply(rw, r, http.StatusOK, res, ledgerFail(err, msgSplitFailed)) }()

	var req SplitReq
	if err = decode(r, &req); err != nil {
		return
	}

	net, c, err := w.chain(r)
	if err != nil {
		return
	}

	if len(req.Splits) == 0 || len(req.Splits) > stellar.MaxOps {
		err = fail(http.StatusBadRequest, msgBadSplits, ErrBadSplits)

		return
	}

	total := decimal.Zero
	dests := make([]string, 0, len(req.Splits))

	for _, s := range req.Splits {
		if err = payment(c, s.Destination, s.Amount); err != nil {
			return
		}

		total = total.Add(s.Amount)
		dests = append(dests, s.Destination)
	}

	acc, tx, err := w.submit(net, c, msg.SPLIT, req.SourceSecret, total, func(string) []types.Op {
		ops := make([]types.Op, 0, len(req.Splits))
		for _, s := range req.Splits {
			ops = append(ops, types.Payment{To: s.Destination, Amount: s.Amount})
		}

		return ops
	})
	if err != nil {
		return
	}

	e := msg.NewEvent(net, msg.SPLIT, tx.Hash, acc.ID)
	e.Destinations, e.Amount = dests, total.String()
	w.publish(e)

	res = Submitted{Success: true, Result: tx}
}
