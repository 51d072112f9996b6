// Package logging configures the global zerolog logger used by every
// analysis pass. The translator is a one-shot batch CLI rather than a
// long-running service, so there is no Cloud Logging severity sink to
// feed (unlike the teacher this is adapted from); what's kept is the
// RFC3339Nano/global-level/console-writer setup and the
// version-tagged base logger every component logger derives from.
package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger for a translation run.
func SetupLogger(version string, debug, human bool) {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if human {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = log.With().
		Str("version", version).
		Str("goversion", runtime.Version()).
		Logger()
}

// Component returns a logger tagged with the given pipeline pass name,
// the idiom the logging packages (allocation, flatcontract, callgraph,
// analysisstack, codegen) use for their package-level logger.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
