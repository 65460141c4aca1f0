package influxdb

import (
	"errors"
	"strings"

	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

var (
	errEmptySinkName     = errors.New("empty sink name")
	errEmptySinkAddress  = errors.New("empty sink address")
	errEmptySinkDatabase = errors.New("sink requires a database name")
	errInvalidSinkType   = errors.New("invalid sink type")
)

// terminalErrors are substrings of server responses for which a retry of
// the same batch can never succeed.
var terminalErrors = []string{
	"database not found",
	"user is not authorized",
	"authorization failed",
	"username required",
	"field type conflict",
	"points beyond retention policy",
	"unable to parse",
}

// classifyError wraps a delivery error with its retryability. Server
// rejections of the batch itself are terminal, everything else (timeouts,
// transport errors, write pressure on the server) is worth a retry.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())

	for _, s := range terminalErrors {
		if strings.Contains(msg, s) {
			return &batch.TerminalError{Err: err}
		}
	}

	return &batch.RetryableError{Err: err}
}
