// Package config loads sheetio configuration.
//
// Sources, lowest precedence first:
//
// 1. struct defaults (`default:` tags)
// 2. a YAML file: $SHEETIO_CONFIG, config.yaml or configs/config.yaml
// 3. a .env file in the working directory
// 4. SHEETIO_* environment variables
//
// Example:
//
//	SHEETIO_SERVER_PORT=9090
//	SHEETIO_CSV_DELIMITER=";"
//	SHEETIO_CONVERSION_WITH_HEADER=false
//	SHEETIO_LOGGING_LEVEL=debug
//
// The loaded configuration is validated with go-playground/validator
// before it is returned.
package config
