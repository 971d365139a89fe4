// Package block defines the interface required for all ledger network connections.
package block

import (
	"log/slog"

	"github.com/tarancss/dwallet/lib/block/stellar"
	"github.com/tarancss/dwallet/lib/block/types"
	"github.com/tarancss/dwallet/lib/config"
)

// Chain is an interface that contains the required methods for a ledger network. Keys are handled as the ledger's
// string encodings (public address and secret seed) so that callers never touch the signing primitives.
type Chain interface {
	Close()
	// keys
	NewKeys() (address, seed string, err error)
	Address(seed string) (string, error)
	Valid(address string) bool
	// ledger
	Account(address string) (types.Account, error)
	Send(seed string, acc types.Account, ops ...types.Op) (types.Trans, error)
	Resolve(address string) (string, error)
}

// Init loads all the clients read from the config to ledger networks into a map.
func Init(nets []config.NetConfig) (m map[string]Chain, err error) {
	m = make(map[string]Chain, len(nets))

	for _, n := range nets {
		var c *stellar.Stellar

		if c, err = stellar.Init(n.Horizon, n.Passphrase, n.BaseFee, n.Timeout, n.HTTPTimeout); err != nil {
			return nil, err
		}

		m[n.Name] = c

		slog.Info("ledger client loaded", "net", n.Name, "horizon", n.Horizon)
	}

	return m, nil
}

// End closes gracefully all the ledger clients opened.
func End(bc map[string]Chain) {
	for _, c := range bc {
		c.Close()
	}
}
