package db

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("formprocessor", "github.com/marqusG/FormProcessor/db")

func init() {
	logging.InstantiateLoggers()
}
