package settings

import (
	"net/url"
	"time"
)

type FractionalizeSettings struct {
	HTTPListenAddress string
	APIPrefix         string
	// StoreURL selects the record store backend by scheme, see stores/fractionalize/factory.
	StoreURL      *url.URL
	AdminToken    string
	QueryTimeout  time.Duration
	StatsCacheTTL time.Duration
	StrictTxID    bool
	EchoDebug     bool
	RecentRecords int
}

type PostgresSettings struct {
	MaxIdleConns int
	MaxOpenConns int
}

type Settings struct {
	ServiceName         string
	Version             string
	Commit              string
	LogLevel            string
	DataFolder          string
	PrometheusEndpoint  string
	SecurityLevelHTTP   int
	ServerCertFile      string
	ServerKeyFile       string
	TracingEnabled      bool
	TracingCollectorURL string
	TracingSampleRate   float64
	Fractionalize       FractionalizeSettings
	Postgres            PostgresSettings
}
