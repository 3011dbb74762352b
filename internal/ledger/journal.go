// internal/ledger/journal.go
package ledger

import (
	"context"
	"math/big"
)

// Change is everything one committed operation writes. A Journal must persist it
// atomically: all of it or none of it.
type Change struct {
	Collection Identity

	Artist *ArtistRecord
	Config *CollectionConfig
	Owner  Identity

	Assets     []Asset
	Listing    *Listing
	Batch      *BatchRecord
	Settlement *Settlement
	Deposit    *Deposit
}

type Deposit struct {
	Reference string   `json:"reference"`
	Account   Identity `json:"account"`
	Amount    *big.Int `json:"amount"`
}

// Journal makes committed changes durable. Commit runs under the writer's lock
// before the change becomes visible; an error aborts the operation.
type Journal interface {
	Commit(ctx context.Context, change *Change) error
}

type nopJournal struct{}

func (nopJournal) Commit(context.Context, *Change) error { return nil }

// NopJournal keeps state in memory only.
var NopJournal Journal = nopJournal{}
