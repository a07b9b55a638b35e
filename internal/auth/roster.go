package auth

import (
	"errors"
	"fmt"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// ErrInvalidCredentials is returned on a bad department/password pair. The
// same error covers unknown departments so login probes learn nothing.
var ErrInvalidCredentials = errors.New("invalid department or password")

type rosterEntry struct {
	account  domain.Account
	password string
}

// Default department accounts and passwords. "IT Administration" is the sole
// administrator; everything else is a department operator.
var defaultRoster = []rosterEntry{
	{domain.Account{ID: "admin-1", Email: "admin@company.com", Name: "System Administrator", Role: domain.RoleAdministrator, Department: "IT Administration"}, "ADMIN2024"},
	{domain.Account{ID: "preproom-westfield", Email: "preproom.westfield@company.com", Name: "Preproom Westfield", Role: domain.RoleOperator, Department: "Preproom Westfield"}, "PRW1234"},
	{domain.Account{ID: "preproom-burnhouse", Email: "preproom.burnhouse@company.com", Name: "Preproom Burnhouse", Role: domain.RoleOperator, Department: "Preproom Burnhouse"}, "PRB1234"},
	{domain.Account{ID: "dcm", Email: "dcm@company.com", Name: "DCM", Role: domain.RoleOperator, Department: "DCM"}, "DCM1234"},
	{domain.Account{ID: "qa-qc", Email: "qa.qc@company.com", Name: "QA-QC", Role: domain.RoleOperator, Department: "QA-QC"}, "QAQC1234"},
	{domain.Account{ID: "hiw-burnhouse", Email: "hiw.burnhouse@company.com", Name: "HIW-Burnhouse", Role: domain.RoleOperator, Department: "HIW-Burnhouse"}, "HIWB1234"},
	{domain.Account{ID: "hiw-westfield", Email: "hiw.westfield@company.com", Name: "HIW-Westfield", Role: domain.RoleOperator, Department: "HIW-Westfield"}, "HIWW1234"},
	{domain.Account{ID: "office-burnhouse", Email: "office.burnhouse@company.com", Name: "Office-Burnhouse", Role: domain.RoleOperator, Department: "Office-Burnhouse"}, "OFFB1234"},
	{domain.Account{ID: "office-westfield", Email: "office.westfield@company.com", Name: "Office-Westfield", Role: domain.RoleOperator, Department: "Office-Westfield"}, "OFFW1234"},
	{domain.Account{ID: "bm-burnhouse", Email: "bm.burnhouse@company.com", Name: "BM-Burnhouse", Role: domain.RoleOperator, Department: "BM-Burnhouse"}, "BMB1234"},
	{domain.Account{ID: "bm-westfield", Email: "bm.westfield@company.com", Name: "BM-Westfield", Role: domain.RoleOperator, Department: "BM-Westfield"}, "BMW1234"},
	{domain.Account{ID: "cleanroom-burnhouse", Email: "cleanroom.burnhouse@company.com", Name: "Cleanroom-Burnhouse", Role: domain.RoleOperator, Department: "Cleanroom-Burnhouse"}, "CRB1234"},
	{domain.Account{ID: "cleanroom-westfield", Email: "cleanroom.westfield@company.com", Name: "Cleanroom-Westfield", Role: domain.RoleOperator, Department: "Cleanroom-Westfield"}, "CRW1234"},
	{domain.Account{ID: "rd", Email: "rd@company.com", Name: "R&D", Role: domain.RoleOperator, Department: "R&D"}, "RD1234"},
	{domain.Account{ID: "technical", Email: "technical@company.com", Name: "Technical", Role: domain.RoleOperator, Department: "Technical"}, "TECH1234"},
}

// Roster holds the static department accounts with bcrypt-hashed credentials.
type Roster struct {
	accounts map[string]domain.Account
	hashes   map[string]string
}

// NewRoster hashes the built-in credentials at the given bcrypt cost.
func NewRoster(bcryptCost int) (*Roster, error) {
	r := &Roster{
		accounts: make(map[string]domain.Account, len(defaultRoster)),
		hashes:   make(map[string]string, len(defaultRoster)),
	}
	for _, entry := range defaultRoster {
		hash, err := HashPassword(entry.password, bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash credentials for %s: %w", entry.account.Department, err)
		}
		r.accounts[entry.account.Department] = entry.account
		r.hashes[entry.account.Department] = hash
	}
	return r, nil
}

// Login verifies the department password and returns the bound account.
func (r *Roster) Login(department, password string) (domain.Account, error) {
	hash, ok := r.hashes[department]
	if !ok {
		return domain.Account{}, ErrInvalidCredentials
	}
	if err := ComparePassword(hash, password); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}
	return r.accounts[department], nil
}

// Departments lists the login choices, administrators first.
func (r *Roster) Departments() []domain.Account {
	out := make([]domain.Account, 0, len(defaultRoster))
	for _, entry := range defaultRoster {
		out = append(out, entry.account)
	}
	return out
}
