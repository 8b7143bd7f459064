package authkit

import "github.com/stockwise/authkit/permission"

// landingRoutes maps each role to the route shown right after login.
// Consulted exactly once per login; navigation afterwards is free within
// whatever the permission table allows.
var landingRoutes = map[permission.Role]string{
	permission.RoleAdministrador: "/app/tablero",
	permission.RoleSupervisor:    "/app/tablero",
	permission.RoleBodeguero:     "/app/inventario",
	permission.RoleVendedor:      "/app/ventas",
	permission.RoleComprador:     "/app/compras",
	permission.RoleAuditor:       "/app/reportes",
}

// LandingRoute returns the post-login route for a role. Unknown roles
// land on the login route so a corrupted role value never strands the
// user on a blank page.
func LandingRoute(role permission.Role, loginRoute string) string {
	if route, ok := landingRoutes[role]; ok {
		return route
	}
	return loginRoute
}
