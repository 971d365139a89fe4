package wallet

import (
	"errors"
	"net/http"

	"github.com/tarancss/dwallet/lib/block/types"
)

// Errors detected by the wallet before reaching the ledger or the store.
var (
	ErrBadRequest  = errors.New("bad request body")
	ErrNoNet       = errors.New("network not available")
	ErrBadAmount   = errors.New("amount must be positive with at most 7 decimals")
	ErrBadWeight   = errors.New("weight must be an integer between 0 and 255")
	ErrBadSplits   = errors.New("splits must contain between 1 and 100 payments")
	ErrBadAsset    = errors.New("asset code is required")
	ErrNoHistory   = errors.New("no transactions found")
	ErrStore       = errors.New("transaction log failure")
	ErrBadAnalysis = errors.New("stored amount is not a decimal")
)

// Messages replied to clients.
const (
	msgBadRequest      = "Invalid request body. Check the fields and try again."
	msgNoNet           = "Network not available."
	msgBadAmount       = "The amount must be a positive number greater than 0."
	msgBadDestination  = "Invalid destination public key format. Please provide a valid Stellar public key."
	msgBadSecret       = "Invalid secret key format. Please provide a valid Stellar secret key."
	msgUnderfunded     = "Insufficient funds. The source account does not have enough XLM to complete this transaction."
	msgNoDestination   = "The destination account does not exist. Please provide a valid and funded destination public key."
	msgSourceUnfunded  = "The source account does not exist or is unfunded. Please fund the account and try again."
	msgUnfunded        = "The account does not exist or is unfunded. Please ensure the account is funded before checking the balance."
	msgBalanceFailed   = "Unable to fetch balance. Check the public key and try again."
	msgPaymentFailed   = "Payment failed. Check the transaction details and try again."
	msgPaymentNotSaved = "Payment was submitted to the ledger but could not be recorded in the transaction history."
	msgEscrowFailed    = "Escrow creation failed. Check the transaction details and try again."
	msgBadSigner       = "Invalid signer public key format. Please provide a valid Stellar public key."
	msgBadWeight       = "The signer weight must be an integer between 0 and 255."
	msgSignerFailed    = "Failed to add signer. Check the transaction details and try again."
	msgBadPrice        = "The price must be a positive number greater than 0."
	msgBadAsset        = "Asset codes are required."
	msgBadIssuer       = "Invalid asset issuer format. Please provide a valid Stellar public key."
	msgOfferFailed     = "Failed to create offer. Check the transaction details and try again."
	msgTrustFailed     = "Failed to add trustline. Check the details and try again."
	msgMergeFailed     = "Failed to merge account. Check the details and try again."
	msgResolveFailed   = "Failed to resolve federated address. Check the address and try again."
	msgBadSplits       = "Splits must contain between 1 and 100 payments."
	msgSplitFailed     = "Failed to split payment. Check the details and try again."
	msgNoHistory       = "No transaction history found for this account."
	msgHistoryFailed   = "An error occurred while retrieving transaction history."
	msgAnalyticsFailed = "An error occurred while retrieving transaction analytics."
)

// apiError pairs the message replied to the client with its http status. The wrapped error is only logged.
type apiError struct {
	status int
	msg    string
	err    error
}

func (e *apiError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return e.msg + ": " + e.err.Error()
}

func (e *apiError) Unwrap() error { return e.err }

func fail(status int, msg string, err error) error {
	return &apiError{status: status, msg: msg, err: err}
}

// ledgerFail translates the errors of a signed operation into client errors. Errors already translated are kept
// and anything unknown is replied with the operation's generic message.
func ledgerFail(err error, generic string) error {
	var ae *apiError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, types.ErrBadSecret):
		return fail(http.StatusBadRequest, msgBadSecret, err)
	case errors.Is(err, types.ErrNoAccount):
		return fail(http.StatusBadRequest, msgSourceUnfunded, err)
	case errors.Is(err, types.ErrUnderfunded):
		return fail(http.StatusBadRequest, msgUnderfunded, err)
	case errors.Is(err, types.ErrNoDestination):
		return fail(http.StatusBadRequest, msgNoDestination, err)
	}

	return fail(http.StatusBadRequest, generic, err)
}
