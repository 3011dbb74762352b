// internal/ledger/vault.go
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"
)

type Payout struct {
	To     Identity `json:"to"`
	Amount *big.Int `json:"amount"`
}

// PaymentMedium moves value between identities in two phases. Prepare reserves
// the payer's funds and checks every recipient; the returned Transfer is then
// either committed or aborted, never both.
type PaymentMedium interface {
	Prepare(ctx context.Context, payer Identity, amount *big.Int, payouts []Payout) (Transfer, error)
}

type Transfer interface {
	Commit()
	Abort()
}

// Vault is an in-process PaymentMedium with per-identity balances.
type Vault struct {
	mu        sync.Mutex
	balances  map[Identity]*big.Int
	deposits  map[string]Deposit
	rejecting map[Identity]bool
	journal   Journal
	sink      EventSink
	now       func() time.Time
}

func NewVault(journal Journal, sink EventSink) *Vault {
	if journal == nil {
		journal = NopJournal
	}
	if sink == nil {
		sink = Fanout{}
	}
	return &Vault{
		balances:  make(map[Identity]*big.Int),
		deposits:  make(map[string]Deposit),
		rejecting: make(map[Identity]bool),
		journal:   journal,
		sink:      sink,
		now:       time.Now,
	}
}

// Deposit credits account once per reference. It reports false when the
// reference was already applied.
func (v *Vault) Deposit(ctx context.Context, reference string, account Identity, amount *big.Int) (bool, error) {
	if reference == "" {
		return false, fmt.Errorf("%w: deposit reference is required", ErrInvalidAmount)
	}
	if amount == nil || amount.Sign() <= 0 {
		return false, ErrInvalidAmount
	}
	if account == ZeroIdentity {
		return false, ErrInvalidRecipient
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.deposits[reference]; ok {
		return false, nil
	}

	dep := Deposit{Reference: reference, Account: account, Amount: new(big.Int).Set(amount)}
	if err := v.journal.Commit(ctx, &Change{Deposit: &dep}); err != nil {
		return false, fmt.Errorf("journal deposit: %w", err)
	}

	v.deposits[reference] = dep
	v.credit(account, amount)

	ev := newEvent(EventDeposit, ZeroIdentity, v.now())
	ev.To = account
	ev.Price = new(big.Int).Set(amount)
	ev.Reference = reference
	v.sink.Publish(ev)

	return true, nil
}

func (v *Vault) Balance(id Identity) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if b, ok := v.balances[id]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// SetRejecting makes id refuse incoming payouts, the way a payment medium
// bounces funds sent to a recipient that cannot accept them. No route exposes
// it; tests use it to drive the payout-rejected path of a purchase.
func (v *Vault) SetRejecting(id Identity, reject bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if reject {
		v.rejecting[id] = true
	} else {
		delete(v.rejecting, id)
	}
}

func (v *Vault) Prepare(_ context.Context, payer Identity, amount *big.Int, payouts []Payout) (Transfer, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	total := new(big.Int)
	for _, p := range payouts {
		if p.Amount == nil || p.Amount.Sign() < 0 {
			return nil, ErrInvalidAmount
		}
		total.Add(total, p.Amount)
	}
	if total.Cmp(amount) != 0 {
		return nil, fmt.Errorf("%w: payouts total %s, payment %s", ErrInvalidAmount, total, amount)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for _, p := range payouts {
		if p.To == ZeroIdentity {
			return nil, ErrInvalidRecipient
		}
		if v.rejecting[p.To] {
			return nil, fmt.Errorf("%w: %s", ErrPayoutRejected, p.To.Hex())
		}
	}
	bal := v.balances[payer]
	if bal == nil || bal.Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, payer.Hex(), balanceString(bal), amount)
	}
	bal.Sub(bal, amount)

	held := make([]Payout, len(payouts))
	for i, p := range payouts {
		held[i] = Payout{To: p.To, Amount: new(big.Int).Set(p.Amount)}
	}
	return &vaultTransfer{v: v, payer: payer, amount: new(big.Int).Set(amount), payouts: held}, nil
}

// Restore rebuilds balances from journaled deposits and settlements.
func (v *Vault) Restore(deposits []Deposit, settlements []Settlement) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, d := range deposits {
		v.deposits[d.Reference] = d
		v.credit(d.Account, d.Amount)
	}
	for _, s := range settlements {
		v.credit(s.Buyer, new(big.Int).Neg(s.Split.Price))
		v.credit(s.Treasury, s.Split.PlatformAmount)
		v.credit(s.Gallery, s.Split.GalleryAmount)
		v.credit(s.Seller, s.Split.SellerAmount)
	}
}

func (v *Vault) credit(id Identity, amount *big.Int) {
	bal, ok := v.balances[id]
	if !ok {
		bal = new(big.Int)
		v.balances[id] = bal
	}
	bal.Add(bal, amount)
}

type vaultTransfer struct {
	v       *Vault
	payer   Identity
	amount  *big.Int
	payouts []Payout
	done    bool
}

func (t *vaultTransfer) Commit() {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()

	if t.done {
		return
	}
	t.done = true
	for _, p := range t.payouts {
		t.v.credit(p.To, p.Amount)
	}
}

func (t *vaultTransfer) Abort() {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()

	if t.done {
		return
	}
	t.done = true
	t.v.credit(t.payer, t.amount)
}

func balanceString(b *big.Int) string {
	if b == nil {
		return "0"
	}
	return b.String()
}
