package parser

import (
	"errors"
	"os"
)

// ErrMissingColumns is a configuration error: the CSV header is missing one
// or more required columns.
var ErrMissingColumns = errors.New("log CSV is missing required columns")

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}
