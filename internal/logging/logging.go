// Package logging wires logrus to stdout and the append-only event log.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup sends every log entry to stdout and to a rotating file sink.
func Setup(logFile string, debug bool) {
	sink := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, sink))
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
