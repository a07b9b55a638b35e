package domain

// Role distinguishes administrator accounts from department operators.
type Role string

const (
	RoleOperator      Role = "operator"
	RoleAdministrator Role = "administrator"
)

// Account is a department-scoped login identity.
type Account struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
}

// IsAdmin reports whether the account has full visibility and mutation rights.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdministrator
}
