// Package types common ledger types.
package types

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NativeCode is the symbol the native asset is reported and requested with.
const NativeCode = "XLM"

// Asset identifies a ledger asset. The native asset has no issuer and Code NativeCode (or empty).
type Asset struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer,omitempty"`
}

// Native returns true if the asset is the ledger's native asset.
func (a Asset) Native() bool {
	return a.Issuer == "" && (a.Code == "" || strings.EqualFold(a.Code, NativeCode) || a.Code == "native")
}

// Balance is the balance of an account in one asset.
type Balance struct {
	Asset   Asset  `json:"asset"`
	Balance string `json:"balance"`
}

// Account contains the account state needed to build transactions.
type Account struct {
	ID       string    `json:"id"`
	Sequence int64     `json:"sequence"`
	Balances []Balance `json:"balances"`
}

// NativeBalance returns the native asset balance of the account, zero if it has none.
func (a Account) NativeBalance() decimal.Decimal {
	for _, b := range a.Balances {
		if b.Asset.Native() {
			if d, err := decimal.NewFromString(b.Balance); err == nil {
				return d
			}
		}
	}

	return decimal.Zero
}

// Op is an operation to be included in a transaction. Implementations are the structs below.
type Op interface {
	Kind() string
}

// Payment sends Amount of the native asset to To.
type Payment struct {
	To     string
	Amount decimal.Decimal
}

// Signer adds, updates or (with Weight 0) removes a signer of the source account.
type Signer struct {
	Key    string
	Weight uint8
}

// SellOffer creates an offer to sell Amount of Selling at Price units of Buying.
type SellOffer struct {
	Selling Asset
	Buying  Asset
	Amount  decimal.Decimal
	Price   decimal.Decimal
}

// Trust establishes a trustline to a non native asset.
type Trust struct {
	Asset Asset
}

// Merge merges the source account into To.
type Merge struct {
	To string
}

func (Payment) Kind() string   { return "payment" }
func (Signer) Kind() string    { return "signer" }
func (SellOffer) Kind() string { return "offer" }
func (Trust) Kind() string     { return "trustline" }
func (Merge) Kind() string     { return "merge" }

// Trans contains the fields of a transaction submission result as replied by the ledger.
type Trans struct {
	Hash       string    `json:"hash"`
	Ledger     int32     `json:"ledger"`
	Successful bool      `json:"successful"`
	Source     string    `json:"source_account"`
	FeeCharged int64     `json:"fee_charged"`
	Ops        int32     `json:"operation_count"`
	Envelope   string    `json:"envelope_xdr"`
	Result     string    `json:"result_xdr"`
	TS         time.Time `json:"created_at"`
}

// Error codes.
var (
	ErrBadSecret     = errors.New("invalid secret seed")
	ErrBadAddress    = errors.New("invalid account address")
	ErrNoAccount     = errors.New("account does not exist or is unfunded")
	ErrUnderfunded   = errors.New("insufficient balance")
	ErrNoDestination = errors.New("destination account does not exist")
	ErrTxFailed      = errors.New("transaction rejected by the ledger")
	ErrNotResolved   = errors.New("address could not be resolved")
	ErrBuild         = errors.New("transaction could not be built")
	ErrNoOps         = errors.New("transaction has no operations")
	ErrTooManyOps    = errors.New("transaction has too many operations")
)

// Ledger result codes with a specific meaning to wallet clients.
const (
	TxInsufficientBalance = "tx_insufficient_balance"
	OpNoDestination       = "op_no_destination"
	OpUnderfunded         = "op_underfunded"
)

// TxError is a transaction rejected by the ledger with its result codes.
type TxError struct {
	Status  int
	Code    string
	OpCodes []string
}

func (e *TxError) Error() string {
	if len(e.OpCodes) == 0 {
		return ErrTxFailed.Error() + ": " + e.Code
	}

	return ErrTxFailed.Error() + ": " + e.Code + " [" + strings.Join(e.OpCodes, ",") + "]"
}

// Is makes the result codes comparable with errors.Is against ErrTxFailed, ErrUnderfunded and ErrNoDestination.
func (e *TxError) Is(target error) bool {
	switch target {
	case ErrTxFailed:
		return true
	case ErrUnderfunded:
		return e.Code == TxInsufficientBalance
	case ErrNoDestination:
		for _, c := range e.OpCodes {
			if c == OpNoDestination {
				return true
			}
		}
	}

	return false
}
