package server

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("formprocessor", "github.com/marqusG/FormProcessor/server")

func init() {
	logging.InstantiateLoggers()
}
