package processor

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("formprocessor", "github.com/marqusG/FormProcessor/processor")

func init() {
	logging.InstantiateLoggers()
}
