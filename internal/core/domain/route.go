package domain

const (
	PathHome  = "/"
	PathLogin = "/login"
)

// Route is a navigable view. Public routes are never guarded.
type Route struct {
	Path         string
	RequiredRole Role
	Public       bool
}

var Routes = []Route{
	{Path: "/", Public: true},
	{Path: "/register", Public: true},
	{Path: "/login", Public: true},

	{Path: "/admin/dashboard", RequiredRole: RoleAdmin},
	{Path: "/admin/products", RequiredRole: RoleAdmin},
	{Path: "/admin/product/add", RequiredRole: RoleAdmin},
	{Path: "/admin/products/deleted", RequiredRole: RoleAdmin},
	{Path: "/admin/orders", RequiredRole: RoleAdmin},
	{Path: "/admin/orders/group-by-user", RequiredRole: RoleAdmin},

	{Path: "/dashboard", RequiredRole: RoleUser},
	{Path: "/products", RequiredRole: RoleUser},
	{Path: "/cart", RequiredRole: RoleUser},
	{Path: "/orders", RequiredRole: RoleUser},
	{Path: "/transfer-point", RequiredRole: RoleUser},
}

func LookupRoute(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
