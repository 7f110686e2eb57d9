package exitcode

const (
	Success     = 0
	UsageError  = 1
	ConfigError = 2
	DBConnError = 3
	QueryError  = 4
	EngineError = 5
	ExportError = 6
)
