package types

// Role is the privilege class of an authenticated principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is a staff login as stored by the account collaborator.
type Account struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
	Deleted      bool
}

func (a Account) Role() Role {
	if a.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
