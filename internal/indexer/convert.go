package indexer

import (
	"context"
	"encoding/hex"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/model"
)

func toModelCovenant(c chainclient.OutputCovenant) model.Covenant {
	return model.Covenant{Type: model.CovenantType(c.Type), Items: c.Items}
}

// prevoutAddress resolves the address owning a spent outpoint, preferring
// the block's View (which the chain client builds from its own history and
// covers every input, same-block or not) and falling back to the secondary
// store for the rare case the view doesn't have it.
func (ix *Indexer) prevoutAddress(ctx context.Context, view chainclient.View, txid string, index uint32) (address string, ok bool, err error) {
	if out, found := view.PrevOutput(txid, index); found {
		return out.Address, true, nil
	}
	coin, err := ix.store.GetCoin(ctx, txid, index)
	if err != nil {
		return "", false, err
	}
	if coin == nil {
		return "", false, nil
	}
	return coin.Address, true, nil
}

// nameHashOf returns a name covenant's name hash, which is always
// covenant.items[0] (spec.md §4.2 step 2).
func nameHashOf(c model.Covenant) string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0]
}

// claimedNameOf decodes the ASCII name carried in a CLAIM/OPEN covenant's
// third item (spec.md §4.2 step 2: "name = covenant.items[2] as ASCII").
// Covenant items are stored hex-encoded (spec.md §3); a malformed item
// degrades to its raw hex form rather than failing the whole block.
func claimedNameOf(c model.Covenant) string {
	if len(c.Items) < 3 {
		return ""
	}
	raw, err := hex.DecodeString(c.Items[2])
	if err != nil {
		return c.Items[2]
	}
	return string(raw)
}
