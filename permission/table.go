package permission

import (
	"errors"
	"sync"
)

// Table maps roles to the modules they may enter and the capability set
// they hold inside each module. A Table is built during initialization
// via [Table.Grant] and then frozen; after [Table.Freeze] all lookups are
// read-only and safe for concurrent use.
//
// Module order is first-grant order across all roles, so
// [Table.AccessibleModules] returns a deterministic, UI-stable sequence.
type Table struct {
	mu          sync.RWMutex
	grants      map[Role]map[string]CapabilitySet
	moduleOrder []string
	frozen      bool
}

// NewTable creates an empty, unfrozen [Table].
func NewTable() *Table {
	return &Table{
		grants: make(map[Role]map[string]CapabilitySet),
	}
}

// Grant assigns the given capabilities to role within module. Granting to
// the same pair twice merges the capability sets. Must be called before
// [Table.Freeze].
func (t *Table) Grant(role Role, module string, caps ...Capability) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return errors.New("permission table frozen")
	}
	if !role.Valid() {
		return errors.New("invalid role")
	}
	if module == "" {
		return errors.New("module name cannot be empty")
	}
	if len(caps) == 0 {
		return errors.New("at least one capability required")
	}
	for _, c := range caps {
		if !c.Valid() {
			return errors.New("invalid capability")
		}
	}

	byModule, ok := t.grants[role]
	if !ok {
		byModule = make(map[string]CapabilitySet)
		t.grants[role] = byModule
	}

	if !t.knownModule(module) {
		t.moduleOrder = append(t.moduleOrder, module)
	}

	byModule[module] = byModule[module] | Caps(caps...)
	return nil
}

func (t *Table) knownModule(module string) bool {
	for _, m := range t.moduleOrder {
		if m == module {
			return true
		}
	}
	return false
}

// Freeze prevents further grants. Must be called before the table is used
// for resolution.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Frozen reports whether the table has been frozen.
func (t *Table) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// HasModuleAccess reports whether role may enter module at all, i.e.
// whether it holds at least one capability there.
func (t *Table) HasModuleAccess(role Role, module string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.grants[role][module].Empty()
}

// HasOperationPermission reports whether role holds the specific
// capability within module.
func (t *Table) HasOperationPermission(role Role, module string, cap Capability) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.grants[role][module].Has(cap)
}

// AccessibleModules returns, in registration order, every module the role
// may enter. A module appears in the result iff [Table.HasModuleAccess]
// returns true for the pair.
func (t *Table) AccessibleModules(role Role) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byModule := t.grants[role]
	out := make([]string, 0, len(byModule))
	for _, m := range t.moduleOrder {
		if !byModule[m].Empty() {
			out = append(out, m)
		}
	}
	return out
}

// Modules returns every module registered in the table, in registration
// order.
func (t *Table) Modules() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.moduleOrder))
	copy(out, t.moduleOrder)
	return out
}
