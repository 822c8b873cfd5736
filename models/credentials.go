package models

type Role int

const (
	NO_ROLE Role = iota
	SOCIO
	OPERADOR
	ADMIN
)

var roleNames = map[Role]string{
	NO_ROLE:  "NO_ROLE",
	SOCIO:    "SOCIO",
	OPERADOR: "OPERADOR",
	ADMIN:    "ADMIN",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[NO_ROLE]
}

func RoleFromString(s string) Role {
	for role, name := range roleNames {
		if name == s {
			return role
		}
	}
	return NO_ROLE
}

// IsStaff is true for the committee staff roles, as opposed to socios
func (r Role) IsStaff() bool {
	return r == ADMIN || r == OPERADOR
}

type Identity struct {
	UserId  string
	SocioId string
	Email   string
	Name    string
}

type Credentials struct {
	ActorIdentity Identity
	Role          Role
}

type IntoCredentials interface {
	IntoCredentials() Credentials
}
