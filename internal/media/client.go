package media

import (
	"context"

	"github.com/gotd/td/tg"
)

// Client is the capability media values borrow to fetch remote bytes.
// Implementations must be safe for concurrent use; media values never
// start or stop them.
type Client interface {
	DownloadMediaAtLocation(ctx context.Context, location tg.InputFileLocationClass, path string) error
}
