// Package gavel implements a single-asset English auction ledger as a
// native contract running against a key/value snapshot of ledger state.
//
// The repository is organized around a small set of platform
// abstractions under core/ (store, access, txn, execution, bank) and the
// auction contract itself under contracts/auction. The cmd/gavel tool
// runs the whole stack against a bbolt database.
package gavel

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// PromCollectors exposes the prometheus collectors of the modules so
// that a tool can register them to its own registry.
var PromCollectors []prometheus.Collector

// EnvLogLevel is the name of the environment variable to change the
// logging level.
const EnvLogLevel = "LLVL"

const defaultLevel = zerolog.NoLevel

func init() {
	switch os.Getenv(EnvLogLevel) {
	case "error":
		Logger = Logger.Level(zerolog.ErrorLevel)
	case "warn":
		Logger = Logger.Level(zerolog.WarnLevel)
	case "info":
		Logger = Logger.Level(zerolog.InfoLevel)
	case "debug":
		Logger = Logger.Level(zerolog.DebugLevel)
	case "trace":
		Logger = Logger.Level(zerolog.TraceLevel)
	case "":
		Logger = Logger.Level(defaultLevel)
	}
}

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance. By default, it only
// prints error level messages but it can be changed through the LLVL
// environment variable.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(defaultLevel)
