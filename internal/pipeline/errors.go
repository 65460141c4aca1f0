package pipeline

import "errors"

var (
	errSinkNotInit = errors.New("sink must be initialized before registering with pipeline")
	errLineTooLong = errors.New("line protocol line exceeds maximum length")
)
