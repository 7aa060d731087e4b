package config

// Default paths and refresh cycles
const (
	// DefaultDatabasePath is the default path for the local catalog mirror
	DefaultDatabasePath = "./mangamirror.db"

	// DefaultClientRefreshCycleSeconds throttles manual refreshes
	DefaultClientRefreshCycleSeconds int64 = 42

	// DefaultServerRefreshCycleSeconds throttles background refreshes
	DefaultServerRefreshCycleSeconds int64 = 7200
)
