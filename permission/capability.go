package permission

import (
	"errors"
	"fmt"
)

// Capability is a single operation a role may perform within a module.
type Capability uint8

const (
	// CapView is an exported constant used by the permission resolver.
	CapView Capability = iota
	// CapCreate is an exported constant used by the permission resolver.
	CapCreate
	// CapEdit is an exported constant used by the permission resolver.
	CapEdit
	// CapDelete is an exported constant used by the permission resolver.
	CapDelete
	// CapExport is an exported constant used by the permission resolver.
	CapExport

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapView:   "view",
	CapCreate: "create",
	CapEdit:   "edit",
	CapDelete: "delete",
	CapExport: "export",
}

// ErrUnknownCapability is returned by [ParseCapability] for names outside
// the closed capability set.
var ErrUnknownCapability = errors.New("unknown capability")

// Valid reports whether c is one of the five defined capabilities.
func (c Capability) Valid() bool {
	return c < capabilityCount
}

func (c Capability) String() string {
	if !c.Valid() {
		return "invalid"
	}
	return capabilityNames[c]
}

// ParseCapability maps a capability name ("view", "create", "edit",
// "delete", "export") to its [Capability] value.
func ParseCapability(name string) (Capability, error) {
	for c := Capability(0); c < capabilityCount; c++ {
		if capabilityNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, name)
}

// CapabilitySet is a bitmask over the five capabilities.
type CapabilitySet uint8

// Caps builds a [CapabilitySet] from individual capabilities. Invalid
// capabilities are ignored.
func Caps(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

// With returns the set extended by c.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	if !c.Valid() {
		return s
	}
	return s | 1<<c
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	if !c.Valid() {
		return false
	}
	return s&(1<<c) != 0
}

// Empty reports whether the set grants nothing.
func (s CapabilitySet) Empty() bool {
	return s == 0
}
