package main

import (
	"github.com/streamingfast/cli"
	"github.com/streamingfast/logging"
	"go.uber.org/zap"
)

var zlog, tracer = logging.RootLogger("formprocessor", "github.com/marqusG/FormProcessor/cmd/formprocessor")

func init() {
	cli.SetLogger(zlog, tracer)

	logging.InstantiateLoggers(logging.WithDefaultLevel(zap.InfoLevel))
}
