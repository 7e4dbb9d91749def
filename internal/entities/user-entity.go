// Файл: internal/entities/user-entity.go
package entities

type Role string

const (
	RoleEngineer   Role = "engineer"
	RoleTechnician Role = "technician"
	RoleStore      Role = "store"
	RoleBranch     Role = "branch"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEngineer, RoleTechnician, RoleStore, RoleBranch, RoleAdmin:
		return true
	}
	return false
}

// Inbox возвращает почтовый ящик роли. У техника ящик личный.
func (r Role) Inbox(technicianID *uint64) (Inbox, bool) {
	switch r {
	case RoleEngineer:
		return Inbox{RecipientType: RecipientEngineer}, true
	case RoleTechnician:
		if technicianID == nil {
			return Inbox{}, false
		}
		return Inbox{RecipientType: RecipientTechnician, RecipientID: technicianID}, true
	case RoleStore:
		return Inbox{RecipientType: RecipientStore}, true
	case RoleAdmin:
		return Inbox{RecipientType: RecipientAdmin}, true
	case RoleBranch:
		return Inbox{RecipientType: RecipientRequester}, true
	}
	return Inbox{}, false
}

type User struct {
	ID           uint64  `json:"id" db:"id"`
	Username     string  `json:"username" db:"username"`
	Password     string  `json:"-" db:"password"`
	Role         Role    `json:"role" db:"role"`
	TechnicianID *uint64 `json:"technician_id,omitempty" db:"technician_id"`
}
