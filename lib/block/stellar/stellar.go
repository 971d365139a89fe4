// Package stellar implements the block.Chain interface for Stellar networks through a Horizon server.
package stellar

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/federation"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/clients/stellartoml"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/price"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"

	"github.com/tarancss/dwallet/lib/block/types"
)

// MaxOps is the maximum number of operations the ledger accepts in one transaction.
const MaxOps = 100

var (
	maxAmount = decimal.New(math.MaxInt64, -7)
	maxPrice  = decimal.NewFromInt(math.MaxInt32)
)

// bounded returns true when d is positive and not above limit. Exponents beyond 18, and values whose digits all lie
// below 7 decimals, are rejected before any comparison rescales the coefficient.
func bounded(d, limit decimal.Decimal) bool {
	if !d.IsPositive() || d.Exponent() > 18 {
		return false
	}

	if d.Exponent() < -7 && -7-int(d.Exponent()) > d.NumDigits() {
		return false
	}

	return d.LessThanOrEqual(limit)
}

// amount returns a as the 7 decimals string of a ledger amount.
func amount(a decimal.Decimal) (string, error) {
	if !bounded(a, maxAmount) {
		return "", fmt.Errorf("%w: amount out of range, exponent %d", types.ErrBuild, a.Exponent())
	}

	return a.StringFixed(7), nil
}

// Stellar implements a connection to a Stellar network via Horizon.
type Stellar struct {
	hc         *http.Client
	c          *horizonclient.Client
	fed        *federation.Client
	passphrase string
	fee        int64 // base fee per operation in stroops
	timeout    int64 // seconds a signed transaction is valid for
}

// Init returns a client for the Horizon server at node. passphrase identifies the network transactions are signed
// for, fee is the base fee per operation, timeout the validity in seconds of signed transactions and httpTimeout the
// limit in seconds for each request to Horizon.
func Init(node, passphrase string, fee, timeout, httpTimeout int64) (*Stellar, error) {
	if node == "" || passphrase == "" {
		return nil, errors.New("stellar: horizon url and network passphrase are required")
	}

	hc := &http.Client{Timeout: time.Duration(httpTimeout) * time.Second}
	c := &horizonclient.Client{HorizonURL: node, HTTP: hc}

	return &Stellar{
		hc:         hc,
		c:          c,
		fed:        &federation.Client{HTTP: hc, Horizon: c, StellarTOML: &stellartoml.Client{HTTP: hc}},
		passphrase: passphrase,
		fee:        fee,
		timeout:    timeout,
	}, nil
}

// Close ends a connection
func (s *Stellar) Close() {
	s.hc.CloseIdleConnections()
}

// NewKeys returns the address and secret seed of a new random keypair. The account is not created on the ledger.
func (s *Stellar) NewKeys() (address, seed string, err error) {
	kp, err := keypair.Random()
	if err != nil {
		return "", "", fmt.Errorf("stellar: cannot generate keypair: %w", err)
	}

	return kp.Address(), kp.Seed(), nil
}

// Address derives the public address from a secret seed.
func (s *Stellar) Address(seed string) (string, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return "", types.ErrBadSecret
	}

	return kp.Address(), nil
}

// Valid returns true if address is a well formed ed25519 account address.
func (s *Stellar) Valid(address string) bool {
	return strkey.IsValidEd25519PublicKey(address)
}

// Account loads the account state (sequence and balances) from Horizon.
func (s *Stellar) Account(address string) (types.Account, error) {
	if !s.Valid(address) {
		return types.Account{}, types.ErrBadAddress
	}

	a, err := s.c.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return types.Account{}, accountErr(err)
	}

	seq, err := a.GetSequenceNumber()
	if err != nil {
		return types.Account{}, fmt.Errorf("stellar: bad sequence for %s: %w", address, err)
	}

	acc := types.Account{ID: a.AccountID, Sequence: seq, Balances: make([]types.Balance, 0, len(a.Balances))}
	if acc.ID == "" {
		acc.ID = address
	}

	for _, b := range a.Balances {
		bal := types.Balance{Balance: b.Balance}

		if b.Asset.Type == "native" {
			bal.Asset = types.Asset{Code: types.NativeCode}
		} else {
			bal.Asset = types.Asset{Code: b.Asset.Code, Issuer: b.Asset.Issuer}
		}

		acc.Balances = append(acc.Balances, bal)
	}

	return acc, nil
}

// Send builds a transaction with the operations given for the account acc, signs it with seed and submits it.
// The submission result is returned as replied by Horizon.
func (s *Stellar) Send(seed string, acc types.Account, ops ...types.Op) (types.Trans, error) {
	if len(ops) == 0 {
		return types.Trans{}, types.ErrNoOps
	}

	if len(ops) > MaxOps {
		return types.Trans{}, types.ErrTooManyOps
	}

	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return types.Trans{}, types.ErrBadSecret
	}

	tx, err := s.Build(acc, ops...)
	if err != nil {
		return types.Trans{}, err
	}

	if tx, err = tx.Sign(s.passphrase, kp); err != nil {
		return types.Trans{}, fmt.Errorf("%w: sign: %v", types.ErrBuild, err)
	}

	res, err := s.c.SubmitTransactionWithOptions(tx, horizonclient.SubmitTxOpts{SkipMemoRequiredCheck: true})
	if err != nil {
		return types.Trans{}, submitErr(err)
	}

	return trans(res), nil
}

// Build assembles an unsigned transaction for acc with the configured fee and timeout.
func (s *Stellar) Build(acc types.Account, ops ...types.Op) (*txnbuild.Transaction, error) {
	tops := make([]txnbuild.Operation, 0, len(ops))

	for _, o := range ops {
		op, err := operation(o)
		if err != nil {
			return nil, err
		}

		tops = append(tops, op)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: acc.ID, Sequence: acc.Sequence},
		IncrementSequenceNum: true,
		Operations:           tops,
		BaseFee:              s.fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(s.timeout)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBuild, err)
	}

	return tx, nil
}

// Resolve returns the account address for a federation address (name*domain) using the federation server
// published in the domain's stellar.toml. A plain account address is checked to exist on the ledger.
func (s *Stellar) Resolve(address string) (string, error) {
	if strings.Contains(address, "*") {
		res, err := s.fed.LookupByAddress(address)
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrNotResolved, err)
		}

		return res.AccountID, nil
	}

	acc, err := s.Account(address)
	if err != nil {
		return "", err
	}

	return acc.ID, nil
}

func operation(o types.Op) (txnbuild.Operation, error) {
	switch v := o.(type) {
	case types.Payment:
		a, err := amount(v.Amount)
		if err != nil {
			return nil, err
		}

		return &txnbuild.Payment{Destination: v.To, Amount: a, Asset: txnbuild.NativeAsset{}}, nil
	case types.Signer:
		return &txnbuild.SetOptions{Signer: &txnbuild.Signer{Address: v.Key, Weight: txnbuild.Threshold(v.Weight)}}, nil
	case types.SellOffer:
		a, err := amount(v.Amount)
		if err != nil {
			return nil, err
		}

		if !bounded(v.Price, maxPrice) {
			return nil, fmt.Errorf("%w: price out of range, exponent %d", types.ErrBuild, v.Price.Exponent())
		}

		p, err := price.Parse(v.Price.String())
		if err != nil {
			return nil, fmt.Errorf("%w: price %s: %v", types.ErrBuild, v.Price, err)
		}

		return &txnbuild.ManageSellOffer{
			Selling: asset(v.Selling),
			Buying:  asset(v.Buying),
			Amount:  a,
			Price:   p,
		}, nil
	case types.Trust:
		line, err := asset(v.Asset).ToChangeTrustAsset()
		if err != nil {
			return nil, fmt.Errorf("%w: trustline %s: %v", types.ErrBuild, v.Asset.Code, err)
		}

		return &txnbuild.ChangeTrust{Line: line}, nil
	case types.Merge:
		return &txnbuild.AccountMerge{Destination: v.To}, nil
	}

	return nil, fmt.Errorf("%w: unknown operation %T", types.ErrBuild, o)
}

func asset(a types.Asset) txnbuild.Asset {
	if a.Native() {
		return txnbuild.NativeAsset{}
	}

	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}

func trans(t hProtocol.Transaction) types.Trans {
	return types.Trans{
		Hash:       t.Hash,
		Ledger:     t.Ledger,
		Successful: t.Successful,
		Source:     t.Account,
		FeeCharged: t.FeeCharged,
		Ops:        t.OperationCount,
		Envelope:   t.EnvelopeXdr,
		Result:     t.ResultXdr,
		TS:         t.LedgerCloseTime,
	}
}

// accountErr translates Horizon errors when loading accounts.
func accountErr(err error) error {
	if hErr := horizonclient.GetError(err); hErr != nil {
		if hErr.Problem.Status == http.StatusNotFound || horizonclient.IsNotFoundError(err) {
			return types.ErrNoAccount
		}

		return fmt.Errorf("stellar: horizon %d %s: %w", hErr.Problem.Status, hErr.Problem.Title, err)
	}

	return fmt.Errorf("stellar: horizon request failed: %w", err)
}

// submitErr translates Horizon errors on transaction submission, keeping the result codes.
func submitErr(err error) error {
	hErr := horizonclient.GetError(err)
	if hErr == nil {
		return fmt.Errorf("%w: %v", types.ErrTxFailed, err)
	}

	codes, cErr := hErr.ResultCodes()
	if cErr != nil || codes == nil {
		return &types.TxError{Status: hErr.Problem.Status, Code: hErr.Problem.Title}
	}

	return &types.TxError{Status: hErr.Problem.Status, Code: codes.TransactionCode, OpCodes: codes.OperationCodes}
}
