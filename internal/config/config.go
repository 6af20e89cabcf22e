package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// DataFile is the JSON persisted-state file used by the json driver.
	DataFile string
	// StoreDriver selects the backend: json, sqlite or postgres.
	StoreDriver string
	SQLitePath  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	LogLevel string
	// ImportCSV, when set, seeds the store from a CSV file at startup.
	ImportCSV string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries. A missing
// .env file is not an error; an unreadable or malformed one is, and the
// returned Config then holds only what the environment provides.
func Load(envFiles ...string) (Config, error) {
	var loadErr error
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		loadErr = fmt.Errorf("load .env: %w", err)
	}

	return Config{
		DataFile:    getenv("STUDENT_RESULTS_FILE", "student_results.json"),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverJSON)),
		SQLitePath:  getenv("SQLITE_PATH", "student_results.db"),
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getenv("DB_PORT", "5432"),
		LogLevel:    getenv("LOG_LEVEL", "warn"),
		ImportCSV:   os.Getenv("IMPORT_CSV"),
	}, loadErr
}

// PostgresDSN builds the connection string for the postgres driver.
func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
