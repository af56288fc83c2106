package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldDescription   = "description"
	FieldAmountCents   = "amount_cents"
	FieldUsername      = "username"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAuth     = "auth"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentSecurity = "security"
)

// Operations defines standard operation names
const (
	OpInsert   = "insert"
	OpList     = "list"
	OpDelete   = "delete"
	OpSummary  = "summary"
	OpLogin    = "login"
	OpMirror   = "mirror"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
