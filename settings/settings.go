package settings

import "time"

func NewSettings() *Settings {
	return &Settings{
		ServiceName:         getString("SERVICE_NAME", "fractionalize"),
		LogLevel:            getString("logLevel", "INFO"),
		DataFolder:          getString("dataFolder", "data"),
		PrometheusEndpoint:  getString("prometheusEndpoint", "/metrics"),
		SecurityLevelHTTP:   getInt("securityLevelHTTP", 0),
		ServerCertFile:      getString("server_certFile", ""),
		ServerKeyFile:       getString("server_keyFile", ""),
		TracingEnabled:      getBool("tracing_enabled", false),
		TracingCollectorURL: getString("tracing_collector_url", "localhost:4318"),
		TracingSampleRate:   getFloat64("tracing_SampleRate", 0.01),
		Fractionalize: FractionalizeSettings{
			HTTPListenAddress: getString("fractionalize_httpListenAddress", ":3000"),
			APIPrefix:         getString("fractionalize_apiPrefix", "/api"),
			StoreURL:          getURL("fractionalize_store", "mongodb://localhost:27017/fractionalize"),
			AdminToken:        getString("ADMIN_TOKEN", ""),
			QueryTimeout:      getDuration("fractionalize_queryTimeout", 10*time.Second),
			StatsCacheTTL:     getDuration("fractionalize_statsCacheTTL", 0),
			StrictTxID:        getBool("fractionalize_strictTxid", false),
			EchoDebug:         getBool("fractionalize_echoDebug", false),
			RecentRecords:     getInt("fractionalize_recentRecords", 10),
		},
		Postgres: PostgresSettings{
			MaxIdleConns: getInt("postgres_maxIdleConns", 10),
			MaxOpenConns: getInt("postgres_maxOpenConns", 80),
		},
	}
}
