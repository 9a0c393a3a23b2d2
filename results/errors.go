package results

import "errors"

var ErrMissingTestId = errors.New("snapshot has no test id")
