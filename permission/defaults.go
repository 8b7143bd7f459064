package permission

// Module identifiers of the application's functional areas, in the order
// the navigation renders them.
const (
	ModuleTablero       = "tablero"
	ModuleUsuarios      = "usuarios"
	ModuleInventario    = "inventario"
	ModuleVentas        = "ventas"
	ModuleCompras       = "compras"
	ModuleProveedores   = "proveedores"
	ModuleClientes      = "clientes"
	ModuleReportes      = "reportes"
	ModuleConfiguracion = "configuracion"
)

// DefaultTable returns the application's built-in permission table,
// already frozen. Deployments that need a different matrix load one via
// [LoadYAML] instead.
func DefaultTable() *Table {
	t := NewTable()

	all := []Capability{CapView, CapCreate, CapEdit, CapDelete, CapExport}
	for _, module := range []string{
		ModuleTablero,
		ModuleUsuarios,
		ModuleInventario,
		ModuleVentas,
		ModuleCompras,
		ModuleProveedores,
		ModuleClientes,
		ModuleReportes,
		ModuleConfiguracion,
	} {
		mustGrant(t, RoleAdministrador, module, all...)
	}

	mustGrant(t, RoleSupervisor, ModuleTablero, CapView)
	mustGrant(t, RoleSupervisor, ModuleUsuarios, CapView, CapEdit)
	mustGrant(t, RoleSupervisor, ModuleInventario, CapView, CapCreate, CapEdit, CapExport)
	mustGrant(t, RoleSupervisor, ModuleVentas, CapView, CapExport)
	mustGrant(t, RoleSupervisor, ModuleCompras, CapView, CapExport)
	mustGrant(t, RoleSupervisor, ModuleProveedores, CapView, CapEdit)
	mustGrant(t, RoleSupervisor, ModuleClientes, CapView, CapEdit)
	mustGrant(t, RoleSupervisor, ModuleReportes, CapView, CapExport)
	mustGrant(t, RoleSupervisor, ModuleConfiguracion, CapView)

	mustGrant(t, RoleBodeguero, ModuleTablero, CapView)
	mustGrant(t, RoleBodeguero, ModuleInventario, CapView, CapCreate, CapEdit)
	mustGrant(t, RoleBodeguero, ModuleCompras, CapView)
	mustGrant(t, RoleBodeguero, ModuleProveedores, CapView)

	mustGrant(t, RoleVendedor, ModuleTablero, CapView)
	mustGrant(t, RoleVendedor, ModuleInventario, CapView)
	mustGrant(t, RoleVendedor, ModuleVentas, CapView, CapCreate, CapEdit)
	mustGrant(t, RoleVendedor, ModuleClientes, CapView, CapCreate, CapEdit)

	mustGrant(t, RoleComprador, ModuleTablero, CapView)
	mustGrant(t, RoleComprador, ModuleInventario, CapView)
	mustGrant(t, RoleComprador, ModuleCompras, CapView, CapCreate, CapEdit)
	mustGrant(t, RoleComprador, ModuleProveedores, CapView, CapCreate, CapEdit)

	mustGrant(t, RoleAuditor, ModuleTablero, CapView)
	mustGrant(t, RoleAuditor, ModuleInventario, CapView)
	mustGrant(t, RoleAuditor, ModuleVentas, CapView)
	mustGrant(t, RoleAuditor, ModuleCompras, CapView)
	mustGrant(t, RoleAuditor, ModuleReportes, CapView, CapExport)

	t.Freeze()
	return t
}

func mustGrant(t *Table, role Role, module string, caps ...Capability) {
	if err := t.Grant(role, module, caps...); err != nil {
		panic("permission: default table grant: " + err.Error())
	}
}
