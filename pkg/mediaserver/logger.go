package mediaserver

import (
	"log"
	"os"

	"github.com/op/go-logging"
)

var _logformat = logging.MustStringFormatter(
	`%{time:2006-01-02T15:04:05.000} %{module}::%{shortfunc} [%{shortfile}] > %{level:.5s} - %{message}`,
)

// CreateLogger writes to logfile or stderr if logfile is empty.
// The returned file is nil for stderr.
func CreateLogger(module string, logfile string, loglevel string) (*logging.Logger, *os.File) {
	var f *os.File
	var err error
	logger := logging.MustGetLogger(module)
	if logfile != "" {
		f, err = os.OpenFile(logfile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("cannot open logfile %v: %v", logfile, err)
		}
	}
	var backend *logging.LogBackend
	if f == nil {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	} else {
		backend = logging.NewLogBackend(f, "", 0)
	}

	backendLeveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, _logformat))
	level, err := logging.LogLevel(loglevel)
	if err != nil {
		level = logging.INFO
	}
	backendLeveled.SetLevel(level, "")
	logging.SetBackend(backendLeveled)

	return logger, f
}
