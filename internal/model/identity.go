package model

// Identity is the authenticated actor resolved once per request from the
// bearer token: id, role, and the role-implied permission set.
type Identity struct {
	UserID      int
	Role        string
	Permissions []string
}
