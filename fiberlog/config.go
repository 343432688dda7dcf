package fiberlog

import "github.com/sirupsen/logrus"

// Config controls which fields the request-logging middleware emits and
// where they go. A nil Logger falls back to the logrus standard logger.
type Config struct {
	Logger *logrus.Logger
	Tags   []string
}

var ConfigDefault = Config{
	Tags: []string{
		TagMethod,
		TagPath,
		TagStatus,
		TagLatency,
	},
}
