package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

var (
	ErrMissingInner   = errors.New("media record has no inner photo or document")
	ErrNotImplemented = errors.New("download strategy is not implemented")
	ErrNoClient       = errors.New("media value has no client")
)

type ErrTransferFailed struct {
	Location tg.InputFileLocationClass
	Path     string
	Err      error
}

func (e *ErrTransferFailed) Error() string {
	location := "<nil>"
	if e.Location != nil {
		location = e.Location.TypeName()
	}
	return fmt.Errorf("failed to download %s to %q: %w", location, e.Path, e.Err).Error()
}

func (e *ErrTransferFailed) Unwrap() error {
	return e.Err
}

// RPCType returns the Telegram error type (e.g. FILE_REFERENCE_EXPIRED)
// or an empty string if the failure did not come from an RPC response.
func (e *ErrTransferFailed) RPCType() string {
	if rpcErr, ok := tgerr.As(e.Err); ok {
		return rpcErr.Type
	}
	return ""
}

// Retryable reports whether repeating the download, possibly after
// refetching the message for a fresh file reference, can succeed.
func (e *ErrTransferFailed) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	if _, ok := tgerr.AsFloodWait(e.Err); ok {
		return true
	}
	if tgerr.Is(e.Err, "FILE_REFERENCE_EXPIRED", "FILE_REFERENCE_INVALID") {
		return true
	}
	if _, ok := tgerr.As(e.Err); ok {
		return false
	}
	return true
}
