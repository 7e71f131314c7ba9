package config

import "os"

// DBConfig is the MySQL target on its own, for tools that do not need the
// rest of the server configuration (spacectl ingest).
type DBConfig struct {
    User string
    Pass string
    Host string
    Port string
    Name string
}

// Configured reports whether user, host and database name are all set.
func (d DBConfig) Configured() bool {
    return d.User != "" && d.Host != "" && d.Name != ""
}

// LoadDBConfig reads DB_USER, DB_PASS, DB_HOST, DB_PORT (default 3306) and
// DB_NAME.
func LoadDBConfig() DBConfig {
    return DBConfig{
        User: os.Getenv("DB_USER"),
        Pass: os.Getenv("DB_PASS"),
        Host: os.Getenv("DB_HOST"),
        Port: getenv("DB_PORT", "3306"),
        Name: os.Getenv("DB_NAME"),
    }
}

// DB returns the database part of c.
func (c Config) DB() DBConfig {
    return DBConfig{User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName}
}
