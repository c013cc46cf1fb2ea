// Package config provides centralized configuration management for the CBM
// flow service.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml or CBM_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CBM_<SECTION>_<FIELD>:
//
//	CBM_SERVER_PORT=8080
//	CBM_LOGGING_LEVEL=debug
//	CBM_UPLOAD_MAX_SIZE=20971520
//	CBM_STORAGE_DRIVER=postgres
//	CBM_STORAGE_POSTGRES_URL=postgres://...
//	CBM_TELEMETRY_EXPORTER=otlp
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, Default() returns a valid configuration that needs no
// environment or files.
package config
