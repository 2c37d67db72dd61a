package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldResource   = "resource"
	FieldKey        = "key"
	FieldEnvelopeID = "envelope_id"
	FieldTargetID   = "target_id"
	FieldLocalID    = "local_id"
	FieldServerID   = "server_id"
	FieldKind       = "kind"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldQueue      = "queue"
	FieldExchange   = "exchange"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentCache        = "cache"
	ComponentMerge        = "merge"
	ComponentOffline      = "offline"
	ComponentReplayer     = "replayer"
	ComponentKV           = "kv"
	ComponentAPI          = "api"
	ComponentAMQP         = "amqp"
	ComponentParticipants = "participants"
	ComponentWorker       = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpMerge    = "merge"
	OpReplay   = "replay"
	OpRecord   = "record"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
