package models

import (
	"encoding/json"
	"fmt"
)

// Role is the tagged variant of user kinds the backend knows about.
type Role int

const (
	RoleUnknown Role = iota
	RoleReader
	RoleGuestAuthor
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleReader:      "Normal User",
	RoleGuestAuthor: "Guest Author",
	RoleAdmin:       "Admin",
}

var loginTypes = map[Role]string{
	RoleReader:      "user",
	RoleGuestAuthor: "guest",
	RoleAdmin:       "admin",
}

// String returns the backend's name for the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// LoginType returns the discriminator sent to the unified login endpoint.
func (r Role) LoginType() string {
	return loginTypes[r]
}

func ParseRole(name string) (Role, error) {
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", name)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleUnknown {
		return json.Marshal("")
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == "" {
		*r = RoleUnknown
		return nil
	}

	role, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = role
	return nil
}
