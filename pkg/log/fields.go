package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Live session
	FieldConnID    = "conn_id"
	FieldSessionID = "session_id"
	FieldTargetID  = "target_id"

	// Service
	FieldService = "service"
)
