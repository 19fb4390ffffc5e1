package config

import (
	"time"

	"sheetio/pkg/contracts"
)

// Application constants
const (
	AppName    = "sheetio"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. SHEETIO_SERVER_PORT
	EnvPrefix = "SHEETIO"

	// ConfigFileEnv names an explicit YAML config file
	ConfigFileEnv = "SHEETIO_CONFIG"

	DefaultMaxUploadBytes = 32 << 20
	DefaultTempDir        = "tmp"
	DefaultOutputDir      = "output"

	// Excel limits a sheet name to 31 characters
	MaxSheetNameLength = 31

	DefaultShutdownTimeout   = 30 * time.Second
	DefaultConversionTimeout = 5 * time.Minute
)
