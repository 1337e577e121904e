package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Tracing fields carried in context through a generation run.
const (
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldApproach  = "approach"
	FieldTemplate  = "template"
	FieldNiche     = "niche"
)

// Metric fields attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
	FieldTokens     = "tokens"
)
