package permission

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRole is returned when a configured role name does not match
// one of the six fixed roles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a role label (case-insensitive, e.g. "administrador")
// to its [Role] value.
func ParseRole(name string) (Role, error) {
	for r := Role(0); r < roleCount; r++ {
		if strings.EqualFold(roleLabels[r], name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

type yamlTable struct {
	Roles map[string]map[string][]string `yaml:"roles"`
}

// LoadYAML builds a frozen [Table] from YAML configuration of the form:
//
//	roles:
//	  administrador:
//	    inventario: [view, create, edit, delete, export]
//	    reportes: [view, export]
//	  vendedor:
//	    ventas: [view, create, edit]
//
// Role names match role labels case-insensitively; capability names are
// the five fixed lowercase identifiers. Any unknown role, empty module
// name, or unknown capability fails the load.
func LoadYAML(r io.Reader) (*Table, error) {
	var doc yamlTable
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode permission table: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, errors.New("permission table has no roles")
	}

	// Map iteration order is randomized; sort so module registration
	// order (and with it AccessibleModules) is stable across loads.
	roleNames := make([]string, 0, len(doc.Roles))
	for roleName := range doc.Roles {
		roleNames = append(roleNames, roleName)
	}
	sort.Strings(roleNames)

	t := NewTable()
	for _, roleName := range roleNames {
		role, err := ParseRole(roleName)
		if err != nil {
			return nil, err
		}
		modules := doc.Roles[roleName]
		moduleNames := make([]string, 0, len(modules))
		for module := range modules {
			moduleNames = append(moduleNames, module)
		}
		sort.Strings(moduleNames)
		for _, module := range moduleNames {
			capNames := modules[module]
			caps := make([]Capability, 0, len(capNames))
			for _, name := range capNames {
				c, err := ParseCapability(name)
				if err != nil {
					return nil, fmt.Errorf("role %q module %q: %w", roleName, module, err)
				}
				caps = append(caps, c)
			}
			if err := t.Grant(role, module, caps...); err != nil {
				return nil, fmt.Errorf("role %q module %q: %w", roleName, module, err)
			}
		}
	}

	t.Freeze()
	return t, nil
}
