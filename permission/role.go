package permission

// Role is one of the six fixed access levels of the application. Role is
// immutable for the lifetime of a session; changing it requires a fresh
// login.
type Role uint8

const (
	// RoleAdministrador has unrestricted access to every module.
	RoleAdministrador Role = iota
	// RoleSupervisor oversees daily operation across modules.
	RoleSupervisor
	// RoleBodeguero manages warehouse stock.
	RoleBodeguero
	// RoleVendedor handles sales and customers.
	RoleVendedor
	// RoleComprador handles purchasing and suppliers.
	RoleComprador
	// RoleAuditor has read and export access for reporting.
	RoleAuditor

	roleCount
)

var roleLabels = [roleCount]string{
	RoleAdministrador: "Administrador",
	RoleSupervisor:    "Supervisor",
	RoleBodeguero:     "Bodeguero",
	RoleVendedor:      "Vendedor",
	RoleComprador:     "Comprador",
	RoleAuditor:       "Auditor",
}

// Valid reports whether r is one of the six defined roles.
func (r Role) Valid() bool {
	return r < roleCount
}

// Label returns the role's fixed UI label, or "" for an undefined role.
func (r Role) Label() string {
	if !r.Valid() {
		return ""
	}
	return roleLabels[r]
}

func (r Role) String() string {
	if !r.Valid() {
		return "desconocido"
	}
	return roleLabels[r]
}

// Roles returns all defined roles in numeric order.
func Roles() []Role {
	out := make([]Role, 0, roleCount)
	for r := Role(0); r < roleCount; r++ {
		out = append(out, r)
	}
	return out
}
