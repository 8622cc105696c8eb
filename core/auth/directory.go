package auth

import (
	"errors"
	"fmt"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// Directory holds exactly one mock account per Role.
type Directory struct {
	accounts map[Role]account
}

func NewDirectory(creds ...Credential) (*Directory, error) {
	dir := &Directory{accounts: make(map[Role]account, len(creds))}
	for _, c := range creds {
		role := c.User.Role
		if !role.Valid() {
			return nil, fmt.Errorf("auth: credential %q has unknown role %q", c.Email, role)
		}
		if _, dup := dir.accounts[role]; dup {
			return nil, fmt.Errorf("auth: duplicate credential for role %q", role)
		}
		acc := account{email: c.Email, user: c.User}
		if err := acc.setPassword(c.Password); err != nil {
			return nil, err
		}
		dir.accounts[role] = acc
	}
	return dir, nil
}

// Authenticate returns the User of the role's record iff email and password match it.
func (d *Directory) Authenticate(email, pwd string, role Role) (User, error) {
	acc, ok := d.accounts[role]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if email != acc.email { // exact match, no case folding
		return User{}, ErrInvalidCredentials
	}
	if err := acc.checkPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}
