package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Context keys
	ContextKeyTenantID = "tenant_id"
	ContextKeyMemberID = "member_id"

	// Member status
	MemberStatusActive  = "active"
	MemberStatusPending = "pending"
	MemberStatusRemoved = "removed"

	// Database table names
	TableRoles            = "roles"
	TableMembers          = "members"
	TableMemberRoles      = "member_roles"
	TableAccountOverrides = "account_overrides"
	TableSubscriptions    = "subscriptions"
	TableFeatureUsage     = "feature_usage"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgForbidden           = "Access forbidden"
	ErrMsgValidationFailed    = "Validation failed"
)
