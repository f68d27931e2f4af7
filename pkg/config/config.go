package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string  // connection string for the database
	Store              string  // store for builds and recipes (postgres, memory)
	CatalogFile        string  // path to a YAML catalog file, replaces the catalog of the store
	WatchCatalog       bool    // reload the catalog file on changes
	NatsURL            string  // if set, the recipe archive is kept in NATS JetStream KV
	NatsBucket         string  // KV bucket for the recipe archive
	WaitForServices    string  // duration to wait for other services to be ready
	LogLevel           string  // sets the log level (zap log level values)
	SQLLogLevel        string  // sets the log level for sql subsystem
	LogFormat          string  // text vs json
	LogFilter          string  // zapfilter rules applied on top of the log level
	MigrationSourceURL string  // location of migration files, empty for embedded files
	EnableTelemetry    bool    // enable telemetry
	TelemetryEndpoint  string  // endpoint for telemetry (otlp grpc), empty for stdout
	CatalogCacheTTL    string  // duration a catalog snapshot is cached
	SPOffsetLeft       float64 // straight-pull calibration (left) for uncalibrated hubs
	SPOffsetRight      float64 // straight-pull calibration (right) for uncalibrated hubs
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)
