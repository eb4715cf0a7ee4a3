package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedUser is an account the store starts with. Password is plaintext and is
// hashed by NewStore.
type SeedUser struct {
	ID       int    `yaml:"id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// DefaultSeed is the administrator account available out of the box.
func DefaultSeed() []SeedUser {
	return []SeedUser{{
		ID:       1,
		Username: "admin",
		Password: "admin123",
		Name:     "Administrador",
		Email:    "admin@exemplo.com",
	}}
}

// LoadSeed reads seed accounts from a YAML file of the form
//
//	users:
//	  - username: admin
//	    password: admin123
//	    name: Administrador
//	    email: admin@exemplo.com
func LoadSeed(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("seed file %s: user %d needs a username and password", path, i)
		}
	}
	return f.Users, nil
}
