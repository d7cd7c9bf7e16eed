package repomanager

import "errors"

var (
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrEmptyExtension  = errors.New("no source file extension configured")
)
