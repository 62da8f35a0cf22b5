package file

import (
	"errors"
	"fmt"
)

var (
	ErrFileExists     = errors.New("file already exists")
	ErrNotRetrievable = errors.New("media has no downloadable content")
	ErrNoSizes        = errors.New("photo has no sizes")
)

type ErrDownloadFailed struct {
	Err error
}

func (e *ErrDownloadFailed) Error() string {
	return fmt.Errorf("failed to download file: %w", e.Err).Error()
}

func (e *ErrDownloadFailed) Unwrap() error {
	return e.Err
}

type ErrPrepareFilepath struct {
	Err error
}

func (e *ErrPrepareFilepath) Error() string {
	return fmt.Errorf("failed to prepare file path: %w", e.Err).Error()
}

func (e *ErrPrepareFilepath) Unwrap() error {
	return e.Err
}
