package config // package config loads application configuration from environment variables

import (
    "errors"  // errors builds the missing-variable error
    "fmt"     // fmt formats validation errors
    "os"      // os provides access to environment variables
    "strings" // strings normalizes enum-like values

    "github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// CatalogSource selects where the room catalog is loaded from at startup.
type CatalogSource string

const (
    SourceFile  CatalogSource = "file"  // read and validate the JSON chart at CatalogPath
    SourceMySQL CatalogSource = "mysql" // read the rooms last written by `spacectl ingest`
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only APP_ENV and APP_PORT are required; the
// database is optional unless the catalog source is mysql.
type Config struct {
    Env           string        // application environment (e.g. "dev", "prod")
    Port          string        // HTTP port to listen on
    CatalogPath   string        // path of the JSON capacity chart
    CatalogSource CatalogSource // file or mysql
    DBUser        string        // database username
    DBPass        string        // database password (optional)
    DBHost        string        // database host address
    DBPort        string        // database port number
    DBName        string        // database name
    JWTSecret     string        // secret used to verify admin JWTs; empty disables the admin API
    LogLevel      string        // zap level name
    LogFormat     string        // "json" or "console"
    AuditDir      string        // directory the event consumer appends its audit log to
}

// DBConfigured reports whether enough DB_* variables are set to open MySQL.
func (c Config) DBConfigured() bool {
    return c.DB().Configured()
}

// Production reports whether the service runs in a production environment.
func (c Config) Production() bool {
    return c.Env == "prod" || c.Env == "production"
}

// LoadDotEnv loads .env from the working directory when present.  Variables
// already set in the environment win.
func LoadDotEnv() {
    _ = godotenv.Load() // a missing .env file is normal outside development
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required variables are reported together.
func Load() (Config, error) {
    var missing []string
    must := func(key string) string { // required variable
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            missing = append(missing, key)
        }
        return v
    }

    cfg := Config{
        Env:           must("APP_ENV"),                                 // environment (dev/test/prod)
        Port:          must("APP_PORT"),                                // port to bind the HTTP server
        CatalogPath:   getenv("CATALOG_PATH", "room_catalog.json"),     // chart used by file source and reload
        CatalogSource: CatalogSource(strings.ToLower(getenv("CATALOG_SOURCE", string(SourceFile)))),
        DBUser:        os.Getenv("DB_USER"),                            // database user
        DBPass:        os.Getenv("DB_PASS"),                            // database password (empty allowed)
        DBHost:        os.Getenv("DB_HOST"),                            // database host
        DBPort:        getenv("DB_PORT", "3306"),                       // database port
        DBName:        os.Getenv("DB_NAME"),                            // database name
        JWTSecret:     os.Getenv("JWT_SECRET"),                         // secret used for verifying JWTs
        LogLevel:      getenv("LOG_LEVEL", "info"),                     // debug/info/warn/error
        LogFormat:     getenv("LOG_FORMAT", "json"),                    // json/console
        AuditDir:      getenv("AUDIT_DIR", "logs"),                     // consumer output directory
    }
    if len(missing) > 0 {
        return cfg, fmt.Errorf("missing required env var: %s", strings.Join(missing, ", "))
    }

    switch cfg.CatalogSource {
    case SourceFile:
    case SourceMySQL:
        if !cfg.DBConfigured() {
            return cfg, errors.New("CATALOG_SOURCE=mysql needs DB_USER, DB_HOST and DB_NAME")
        }
    default:
        return cfg, fmt.Errorf("invalid CATALOG_SOURCE %q (want file or mysql)", cfg.CatalogSource)
    }
    return cfg, nil
}
