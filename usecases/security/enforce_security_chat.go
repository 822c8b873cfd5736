package security

type EnforceSecurityChat interface {
	EnforceSecurity
	ReadChat(socioId string) error
	WriteChat(socioId string) error
	ReadAllChats() error
}

func (e *EnforceSecurityImpl) ReadChat(socioId string) error {
	return e.OwnSocioOrStaff(socioId)
}

func (e *EnforceSecurityImpl) WriteChat(socioId string) error {
	return e.OwnSocioOrStaff(socioId)
}

func (e *EnforceSecurityImpl) ReadAllChats() error {
	return e.Staff()
}
