package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRunID is the orchestration instance id for one weekly run
	FieldRunID = "run_id"

	// FieldSCAC is the client/tenant code being processed
	FieldSCAC = "scac"

	// FieldEntity is the business entity being exported
	FieldEntity = "entity"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldRequestID is the HTTP request ID (server surface only)
	FieldRequestID = "request_id"
)

// Standard metric fields, attached at individual log sites.
const (
	// FieldPage is the pagination page index
	FieldPage = "page"

	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic record count field
	FieldCount = "count"

	// FieldStatus is the operation or HTTP status
	FieldStatus = "status"
)
