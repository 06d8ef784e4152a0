package permissions

// Permission codes referenced throughout the application. Route wiring and
// the price sub-guard use these instead of raw strings.
const (
	UsersRead   = "users.read"
	UsersCreate = "users.create"
	UsersUpdate = "users.update"
	UsersDelete = "users.delete"

	AdminsRead   = "admins.read"
	AdminsCreate = "admins.create"
	AdminsUpdate = "admins.update"
	AdminsDelete = "admins.delete"

	RolesRead   = "roles.read"
	RolesCreate = "roles.create"
	RolesUpdate = "roles.update"
	RolesDelete = "roles.delete"

	PermissionsRead   = "permissions.read"
	PermissionsCreate = "permissions.create"
	PermissionsUpdate = "permissions.update"
	PermissionsDelete = "permissions.delete"

	ProductsRead        = "products.read"
	ProductsCreate      = "products.create"
	ProductsUpdate      = "products.update"
	ProductsDelete      = "products.delete"
	ProductsPriceUpdate = "products.price.update"
)

func init() {
	defs := []*Definition{
		{Code: UsersRead, Name: "Read Users", Module: "users"},
		{Code: UsersCreate, Name: "Create Users", Module: "users"},
		{Code: UsersUpdate, Name: "Update Users", Module: "users"},
		{Code: UsersDelete, Name: "Delete Users", Module: "users"},

		{Code: AdminsRead, Name: "Read Admins", Module: "admins"},
		{Code: AdminsCreate, Name: "Create Admins", Module: "admins"},
		{Code: AdminsUpdate, Name: "Update Admins", Module: "admins"},
		{Code: AdminsDelete, Name: "Delete Admins", Module: "admins"},

		{Code: RolesRead, Name: "Read Roles", Module: "roles"},
		{Code: RolesCreate, Name: "Create Roles", Module: "roles"},
		{Code: RolesUpdate, Name: "Update Roles", Module: "roles"},
		{Code: RolesDelete, Name: "Delete Roles", Module: "roles"},

		{Code: PermissionsRead, Name: "Read Permissions", Module: "permissions"},
		{Code: PermissionsCreate, Name: "Create Permissions", Module: "permissions"},
		{Code: PermissionsUpdate, Name: "Update Permissions", Module: "permissions"},
		{Code: PermissionsDelete, Name: "Delete Permissions", Module: "permissions"},

		{Code: ProductsRead, Name: "Read Products", Module: "products"},
		{Code: ProductsCreate, Name: "Create Products", Module: "products"},
		{Code: ProductsUpdate, Name: "Update Products", Module: "products"},
		{Code: ProductsDelete, Name: "Delete Products", Module: "products"},
		{Code: ProductsPriceUpdate, Name: "Update Product Prices", Module: "products"},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
