package authz

import "errors"

var (
	ErrRoleNotFound         = errors.New("role not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrSystemRoleImmutable  = errors.New("system role cannot be modified")
	ErrInvalidPermission    = errors.New("permission not declared in catalog")
	ErrAccountNotOverridden = errors.New("account has no permission override")
)
