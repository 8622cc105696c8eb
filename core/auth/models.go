package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Role is the portal a User signs into.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RoleStudent, RoleAdmin}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email"`
	Role       Role   `json:"role" yaml:"role"`
	Batch      string `json:"batch,omitempty" yaml:"batch"`
	Department string `json:"department,omitempty" yaml:"department"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// Credential is a mock login record: the pair that must be presented to sign in as User.
type Credential struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	User     User   `yaml:"user"`
}

type account struct {
	email        string
	passwordHash []byte
	user         User
}

func (a *account) setPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.passwordHash = hash
	return nil
}

func (a *account) checkPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(pwd))
}
