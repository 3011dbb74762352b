// internal/ledger/events.go
package ledger

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventCollectionCreated EventKind = "collection_created"
	EventAssetMinted       EventKind = "asset_minted"
	EventBatchProcessed    EventKind = "batch_processed"
	EventAssetListed       EventKind = "asset_listed"
	EventListingCancelled  EventKind = "listing_cancelled"
	EventAssetPurchased    EventKind = "asset_purchased"
	EventAssetTransferred  EventKind = "asset_transferred"
	EventDeposit           EventKind = "deposit"
)

// Event is published after a mutation commits. Fields not relevant to Kind are empty.
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Kind       EventKind   `json:"kind"`
	Collection Identity    `json:"collection"`
	TokenID    uint64      `json:"token_id,omitempty"`
	TokenIDs   []uint64    `json:"token_ids,omitempty"`
	BatchID    string      `json:"batch_id,omitempty"`
	Reference  string      `json:"reference,omitempty"`
	Artist     Identity    `json:"artist,omitempty"`
	ArtistName string      `json:"artist_name,omitempty"`
	From       Identity    `json:"from,omitempty"`
	To         Identity    `json:"to,omitempty"`
	URI        string      `json:"uri,omitempty"`
	Price      *big.Int    `json:"price,omitempty"`
	Settlement *Settlement `json:"settlement,omitempty"`
	At         time.Time   `json:"at"`
}

// EventSink receives committed events in commit order for one collection.
// Publish is called while the collection's write lock is held and must not block.
type EventSink interface {
	Publish(ev Event)
}

// Fanout publishes to every sink in order.
type Fanout []EventSink

func (f Fanout) Publish(ev Event) {
	for _, s := range f {
		s.Publish(ev)
	}
}

func newEvent(kind EventKind, collection Identity, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Collection: collection,
		At:         at,
	}
}
