package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldExpenseID = "id"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldDBPath    = "db_path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentStorage = "storage"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpRegister    = "register"
	OpAddExpense  = "add_expense"
	OpReport      = "report"
	OpTopCategory = "top_category"
	OpStats       = "stats"
	OpMirror      = "mirror"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)
