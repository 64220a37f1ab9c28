package layershell

import (
	"github.com/rs/zerolog"
)

// log is the package logger. It discards everything until SetLogger is
// called, so the library stays silent by default.
var log = zerolog.Nop()

// SetLogger installs a logger for the whole package. Call it before Connect;
// the logger is read without synchronization afterwards.
func SetLogger(l zerolog.Logger) {
	log = l.With().Str("component", "layershell").Logger()
}
