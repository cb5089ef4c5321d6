package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DataDir           string // base directory for courses and layouts
	Storage           string // course storage backend: file, sqlite or postgres
	SQLiteFile        string // path to the sqlite database (default: <DataDir>/courses.db)
	DB                string // connection string for the database
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules, e.g. "*:* -debug:session"
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry
	TelemetryStdout   bool   // write telemetry to stdout instead of the endpoint
	ProfilingPort     int    // port for profiling
	NatsURL           string // URL of the NATS server, empty disables publishing
	NatsPrefix        string // subject prefix for published run events
	NatsKVBucket      string // key value bucket for the latest event per course
	StatusAddr        string // listen addr for the status endpoint, empty disables it
	TLSCertFile       string // status endpoint: path to TLS certificate
	TLSKeyFile        string // status endpoint: path to TLS key
	TLSCAFile         string // status endpoint: path to TLS CA for client certs
	TraefikCerts      string // status endpoint: traefik acme.json holding the cert
	TraefikCertDomain string // domain to look up in TraefikCerts
	Course            string // course to activate on start
	Layout            string // name of a saved layout
	Preset            string // display preset applied when no layout is given
	TimeFormat        string // MSS, TICKS or SECONDS
	Input             string // sample source, "-" for stdin
	WatchCourses      bool   // reload the active course on external file changes
)

// storage backends
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Config holds the configuration values which are used by the application
type Config struct {
	PrintSnapshots bool // if true, every published snapshot is logged on debug level
}
