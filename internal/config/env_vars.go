package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	databaseURLVar = "DATABASE_URL"
	logLevelVar    = "LOG_LEVEL"

	defaultPort        = "3000"
	defaultDatabaseURL = "file:calendar-gateway.db?_foreign_keys=on"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address in ":port" form.
func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, defaultPort)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Calendar Gateway")
}

// GetDatabaseURL returns the DSN handed to the users store. A postgres:// URL selects
// the postgres driver, anything else is opened with sqlite3.
func (EnvVars) GetDatabaseURL() string {
	return GetEnv(databaseURLVar, defaultDatabaseURL)
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
