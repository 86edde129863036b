package config

import (
	"errorwatch/version"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds collector runtime configuration.
type Config struct {
	LogLevel             string
	LogFilePath          string
	Port                 int
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	CLIMode              bool
	CLIServer            string // Collector URL for CLI and emit modes
	EmitMessage          string // Non-empty runs a one-shot capture against CLIServer

	// Tunable limits
	MaxStoredErrors    int
	IngestRatePerSec   float64
	IngestBurst        int
	MaxIngestBodyBytes int64
	StreamBufferSize   int
	DefaultPageSize    int
	EmitTimeoutSeconds int
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	// A missing .env file is the normal case.
	_ = godotenv.Load()
	Settings = Defaults()
}

// Defaults builds a Config from environment variables, falling back to built-in defaults.
func Defaults() *Config {
	return &Config{
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		LogFilePath:          getEnv("LOG_FILE", "./errorwatch.log"),
		Port:                 getEnvInt("PORT", 7789),
		DatabaseURL:          getEnv("DATABASE_URL", "errorwatch.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		CLIMode:              getEnvBool("CLI_MODE", false),
		CLIServer:            getEnv("ERRORWATCH_SERVER", "http://localhost:7789"),

		MaxStoredErrors:    getEnvInt("MAX_STORED_ERRORS", 10000),
		IngestRatePerSec:   getEnvFloat("INGEST_RATE_PER_SEC", 50),
		IngestBurst:        getEnvInt("INGEST_BURST", 100),
		MaxIngestBodyBytes: int64(getEnvInt("MAX_INGEST_BODY_BYTES", 262144)),
		StreamBufferSize:   getEnvInt("STREAM_BUFFER_SIZE", 64),
		DefaultPageSize:    getEnvInt("DEFAULT_PAGE_SIZE", 20),
		EmitTimeoutSeconds: getEnvInt("EMIT_TIMEOUT_SECONDS", 10),
	}
}

// ParseFlags parses command-line flags and applies overrides to Settings.
// It handles --help and --version by printing and exiting.
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "errorwatch - error collector\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables (also read from ./.env):")
		fmt.Fprintln(out, "  LOG_LEVEL                     Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                      Log file path (default ./errorwatch.log)")
		fmt.Fprintln(out, "  PORT                          HTTP server port (default 7789)")
		fmt.Fprintln(out, "  DATABASE_URL                  SQLite database path (default errorwatch.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED        Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS        SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE           SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS            SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  ERRORWATCH_SERVER             Collector URL for --cli and --emit")
		fmt.Fprintln(out, "  MAX_STORED_ERRORS             Stored errors kept before pruning (default 10000)")
		fmt.Fprintln(out, "  INGEST_RATE_PER_SEC           Ingest requests per second (default 50)")
		fmt.Fprintln(out, "  INGEST_BURST                  Ingest burst size (default 100)")
		fmt.Fprintln(out, "  MAX_INGEST_BODY_BYTES         Maximum ingest body size (default 262144)")
		fmt.Fprintln(out, "  STREAM_BUFFER_SIZE            Per-subscriber live stream buffer (default 64)")
		fmt.Fprintln(out, "  EMIT_TIMEOUT_SECONDS          Delivery timeout for --emit (default 10)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	sqliteJournalMode := flag.String("sqlite-journal-mode", Settings.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	maxStored := flag.Int("max-stored-errors", Settings.MaxStoredErrors, "Maximum stored errors (overrides MAX_STORED_ERRORS)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	server := flag.String("server", Settings.CLIServer, "Collector URL for --cli and --emit")
	emit := flag.String("emit", "", "Capture one error with this message, deliver it to --server and exit")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
	Settings.SQLiteJournalMode = *sqliteJournalMode
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.MaxStoredErrors = *maxStored
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *server
	Settings.EmitMessage = *emit
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
