package permission

import (
	"errors"
	"strings"
	"testing"
)

const sampleYAML = `
roles:
  administrador:
    inventario: [view, create, edit, delete, export]
    reportes: [view, export]
  vendedor:
    ventas: [view, create, edit]
    clientes: [view]
`

func TestLoadYAML(t *testing.T) {
	table, err := LoadYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !table.Frozen() {
		t.Fatal("loaded table must be frozen")
	}

	if !table.HasOperationPermission(RoleAdministrador, "inventario", CapDelete) {
		t.Fatal("administrador should delete inventario")
	}
	if !table.HasModuleAccess(RoleVendedor, "ventas") {
		t.Fatal("vendedor should access ventas")
	}
	if table.HasOperationPermission(RoleVendedor, "clientes", CapEdit) {
		t.Fatal("vendedor should only view clientes")
	}
	if table.HasModuleAccess(RoleVendedor, "reportes") {
		t.Fatal("vendedor should not access reportes")
	}
}

func TestLoadYAMLDeterministicOrder(t *testing.T) {
	first, err := LoadYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	second, err := LoadYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	a := first.Modules()
	b := second.Modules()
	if len(a) != len(b) {
		t.Fatalf("module counts differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("module order differs at %d: %v vs %v", i, a, b)
		}
	}
}

func TestLoadYAMLUnknownRole(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("roles:\n  gerente:\n    ventas: [view]\n"))
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestLoadYAMLUnknownCapability(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("roles:\n  vendedor:\n    ventas: [approve]\n"))
	if !errors.Is(err, ErrUnknownCapability) {
		t.Fatalf("expected ErrUnknownCapability, got %v", err)
	}
}

func TestLoadYAMLEmpty(t *testing.T) {
	if _, err := LoadYAML(strings.NewReader("roles: {}\n")); err == nil {
		t.Fatal("expected empty table to be rejected")
	}
}

func TestParseRoleCaseInsensitive(t *testing.T) {
	r, err := ParseRole("BODEGUERO")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if r != RoleBodeguero {
		t.Fatalf("expected RoleBodeguero, got %v", r)
	}
}
