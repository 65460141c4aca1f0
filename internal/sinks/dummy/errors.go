package dummy

import "errors"

var (
	errEmptySinkName = errors.New("empty sink name")
)
