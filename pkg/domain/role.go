package domain

import dErrors "heirloom/pkg/domain-errors"

// Role is the closed set of non-owner participant roles. Disclosure policy is
// driven by the capability table below, not by conditionals scattered through
// the access engine: adding a role forces an explicit policy decision here.
type Role string

const (
	// RoleBeneficiary is entitled to sealed key material once a release for the
	// vault has fully completed.
	RoleBeneficiary Role = "beneficiary"
	// RoleWitness may observe vault metadata and release state but never
	// receives items or key material.
	RoleWitness Role = "witness"
	// RoleShared sees the vault exists and its release state, nothing more.
	RoleShared Role = "shared"
)

// roleFileAccess is the capability table: role -> can-ever-receive-files.
// Missing entries mean "never", so an unknown role fails closed.
var roleFileAccess = map[Role]bool{
	RoleBeneficiary: true,
	RoleWitness:     false,
	RoleShared:      false,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleFileAccess[r]
	return ok
}

// CanReceiveFiles reports whether this role may ever be disclosed items and
// sealed keys. Release state gates *when*; this table gates *whether at all*.
func (r Role) CanReceiveFiles() bool {
	return roleFileAccess[r]
}

// ParseRole validates and returns a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
	return r, nil
}

// Roles returns all known roles, for exhaustive policy tests.
func Roles() []Role {
	return []Role{RoleBeneficiary, RoleWitness, RoleShared}
}
