package models

// Role bundles granted permissions for the admins assigned to it.
// AllPermissions is the persisted escape hatch; the guard evaluates it
// through permissions.Grants so the short-circuit is explicit in the type.
type Role struct {
	BaseModel

	Code           string `gorm:"uniqueIndex;not null" json:"code"`
	Name           string `gorm:"not null" json:"name"`
	Description    string `json:"description"`
	AllPermissions bool   `gorm:"default:false" json:"all_permissions"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}
