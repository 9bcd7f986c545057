package form

import (
	"context"
	"fmt"

	"github.com/marqusG/FormProcessor/db"
	"github.com/streamingfast/logging"
)

var zlog, _ = logging.PackageLogger("formprocessor", "github.com/marqusG/FormProcessor/form")

func init() {
	logging.InstantiateLoggers()
}

type staticOptions map[string][]db.Option

func (s staticOptions) SelectOptions(_ context.Context, table string) ([]db.Option, error) {
	options, found := s[table]
	if !found {
		return nil, fmt.Errorf("table %q does not exist", table)
	}
	return options, nil
}

const testConfig = `
site_url: /files/
root_target_dir: ${FORMS_ROOT_DIR}
tables:
  products:
    uploads:
      pictures:
        extensions: [JPG, .png, gif]
        image: true
      documents:
        extensions: [txt, pdf]
    selects: [category]
    lists:
      size: [small, extra large]
    ignored_inputs: [created_at]
    hidden_inputs: [price]
  category:
`
