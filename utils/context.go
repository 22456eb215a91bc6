package utils

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request context keys shared between handlers and flows
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
	WorkspaceKey ContextKey = "workspace_id"

	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
