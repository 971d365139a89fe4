package block

import (
	"testing"

	"github.com/stellar/go/network"

	"github.com/tarancss/dwallet/lib/config"
)

func TestInit(t *testing.T) {
	nets := []config.NetConfig{
		{Name: "testnet", Horizon: "https://horizon-testnet.stellar.org", Passphrase: network.TestNetworkPassphrase,
			BaseFee: 100, Timeout: 30, HTTPTimeout: 30},
		{Name: "pubnet", Horizon: "https://horizon.stellar.org", Passphrase: network.PublicNetworkPassphrase,
			BaseFee: 100, Timeout: 30, HTTPTimeout: 30},
	}

	bc, err := Init(nets)
	if err != nil {
		t.Fatalf("Init err:%v", err)
	}
	defer End(bc)

	if len(bc) != 2 || bc["testnet"] == nil || bc["pubnet"] == nil {
		t.Errorf("unexpected clients %v", bc)
	}

	if _, err = Init([]config.NetConfig{{Name: "broken"}}); err == nil {
		t.Errorf("expected error for a network without horizon")
	}
}
