// internal/ledger/auth.go
package ledger

import (
	"fmt"
	"sync"
)

// Authorizer decides, per call, whether caller holds role.
type Authorizer interface {
	Authorize(caller Identity, role Role) error
}

// RoleBook is an identity -> roles table. Operators implicitly hold every role.
type RoleBook struct {
	mu    sync.RWMutex
	roles map[Identity]map[Role]bool
}

func NewRoleBook(operators ...Identity) *RoleBook {
	rb := &RoleBook{roles: make(map[Identity]map[Role]bool)}
	for _, op := range operators {
		rb.Grant(op, RoleOperator)
	}
	return rb
}

func (rb *RoleBook) Grant(id Identity, role Role) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.roles[id] == nil {
		rb.roles[id] = make(map[Role]bool)
	}
	rb.roles[id][role] = true
}

func (rb *RoleBook) Revoke(id Identity, role Role) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	delete(rb.roles[id], role)
}

func (rb *RoleBook) Has(id Identity, role Role) bool {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	roles := rb.roles[id]
	return roles[role] || roles[RoleOperator]
}

func (rb *RoleBook) Authorize(caller Identity, role Role) error {
	if caller == ZeroIdentity || !rb.Has(caller, role) {
		return fmt.Errorf("%w: %s is not %s", ErrUnauthorized, caller.Hex(), role)
	}
	return nil
}
