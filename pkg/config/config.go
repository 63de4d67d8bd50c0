package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel        string // sets the log level (zap log level values)
	LogFormat       string // text vs json
	LogFilter       string // zapfilter rules, e.g. "*:telemetry.* error:*"
	WaitForServices string // duration to wait for other services to be ready

	Input       string // path to a lap document (file source)
	ProviderURL string // base URL of a telemetry provider
	LapsPath    string // json path locating the lap records within the input
	Season      int    // season of the session
	Event       string // event name, e.g. Monza
	Session     string // session code or name (R, Q, FP1, race, ...)
	Driver      string // three letter driver code
	CacheDir    string // directory of the on-disk cache
	CacheTTL    string // cache entries older than this are refetched (0: never)
	NoCache     bool   // bypass the on-disk cache

	NatsURL       string // URL of the NATS server
	SubjectPrefix string // prefix for published subjects
)

// Config holds the processed values which are used by the application
type Config struct {
	WaitForServices time.Duration
	CacheTTL        time.Duration
}

// Resolve parses the duration values. Invalid values fall back to the defaults.
func Resolve() (*Config, []error) {
	var errs []error
	ret := &Config{WaitForServices: 15 * time.Second}
	if WaitForServices != "" {
		if d, err := time.ParseDuration(WaitForServices); err == nil {
			ret.WaitForServices = d
		} else {
			errs = append(errs, err)
		}
	}
	if CacheTTL != "" {
		if d, err := time.ParseDuration(CacheTTL); err == nil {
			ret.CacheTTL = d
		} else {
			errs = append(errs, err)
		}
	}
	return ret, errs
}
