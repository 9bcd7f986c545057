package upload

import (
	"github.com/streamingfast/logging"
)

var zlog, _ = logging.PackageLogger("formprocessor", "github.com/marqusG/FormProcessor/upload")

func init() {
	logging.InstantiateLoggers()
}
