package config

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	DefaultPaginationLimit  = 100
	FallbackPaginationLimit = 10

	EnvConfigFile = "CONFIG_FILE"
)
