package elasticsearch

import (
	"errors"
	"fmt"
	"net/http"

	elastic "github.com/olivere/elastic/v7"

	"github.com/tsdbkit/fluxbatch/pkg/batch"
)

var (
	errEmptySinkName = errors.New("empty sink name")
	errBulkRejected  = errors.New("bulk request rejected, server under pressure")
)

// terminalStatus returns true for response codes a retry of the same
// request can never fix. Timeouts (408) and load shedding (429) are
// transient.
func terminalStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}

// classifyError wraps a delivery error with its retryability. Client-side
// rejections of the request itself are terminal, everything else
// (timeouts, transport errors, an overloaded cluster) is worth a retry.
func classifyError(err error) error {
	if e, ok := err.(*elastic.Error); ok && terminalStatus(e.Status) {
		return &batch.TerminalError{Err: err}
	}
	return &batch.RetryableError{Err: err}
}

// classifyBulkResponse inspects a bulk response for failed items. A single
// item the server can never accept makes the whole batch terminal,
// a response with only transient failures is worth a retry.
func classifyBulkResponse(resp *elastic.BulkResponse) error {

	if !resp.Errors {
		return nil
	}

	for _, item := range resp.Failed() {
		if terminalStatus(item.Status) {
			return &batch.TerminalError{Err: bulkItemError(item)}
		}
	}

	return &batch.RetryableError{Err: errBulkRejected}
}

// bulkItemError renders a failed bulk response item into an error.
func bulkItemError(item *elastic.BulkResponseItem) error {
	if item.Error != nil {
		return fmt.Errorf("bulk index into '%s': %s: %s", item.Index, item.Error.Type, item.Error.Reason)
	}
	return fmt.Errorf("bulk index into '%s': status %d", item.Index, item.Status)
}
