package core

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// runDigest is the canonical summary of a settlement run that gets hashed.
// Every field is sorted so the hash is independent of processing order.
type runDigest struct {
	WonBids      []string `cbor:"won_bids"`
	FailedBids   []string `cbor:"failed_bids"`
	SuccessDrops []string `cbor:"success_drops"`
	FailedDrops  []string `cbor:"failed_drops"`
	Budgets      []string `cbor:"budgets"`
}

// ComputeRunHash computes a deterministic hash of a settlement result:
// SHA256 over the CBOR encoding of the sorted run summary. Two runs over
// the same pending actions and state always produce the same hash, which
// the store records with each run for later verification.
func ComputeRunHash(r *Result) string {
	digest := runDigest{
		WonBids:      make([]string, 0, len(r.SuccessBids)),
		FailedBids:   make([]string, 0, len(r.FailedBids)),
		SuccessDrops: make([]string, 0, len(r.SuccessDrops)),
		FailedDrops:  make([]string, 0, len(r.FailedDrops)),
		Budgets:      make([]string, 0, len(r.Publishers)),
	}

	for _, bid := range r.SuccessBids {
		digest.WonBids = append(digest.WonBids, fmt.Sprintf("%s:%d", bid.ID, bid.Amount))
	}
	for _, failed := range r.FailedBids {
		digest.FailedBids = append(digest.FailedBids, fmt.Sprintf("%s:%s", failed.Bid.ID, failed.Reason))
	}
	for _, drop := range r.SuccessDrops {
		digest.SuccessDrops = append(digest.SuccessDrops, drop.ID.String())
	}
	for _, failed := range r.FailedDrops {
		digest.FailedDrops = append(digest.FailedDrops, fmt.Sprintf("%s:%s", failed.Drop.ID, failed.Reason))
	}
	for id, publisher := range r.Publishers {
		digest.Budgets = append(digest.Budgets, fmt.Sprintf("%s:%d", id, publisher.Budget))
	}

	sort.Strings(digest.WonBids)
	sort.Strings(digest.FailedBids)
	sort.Strings(digest.SuccessDrops)
	sort.Strings(digest.FailedDrops)
	sort.Strings(digest.Budgets)

	encoded, err := cbor.Marshal(digest)
	if err != nil {
		// The digest is plain strings; encoding cannot fail at runtime.
		panic(fmt.Sprintf("ComputeRunHash: encode digest: %v", err))
	}
	hash := sha256.Sum256(encoded)
	return fmt.Sprintf("%x", hash)
}
