package media

import (
	"fmt"
	"log/slog"

	"github.com/gotd/td/tg"
)

// Media is one of *Photo, *Document or *Uploaded.
type Media interface {
	fmt.Stringer
	InputLocation() (tg.InputFileLocationClass, bool)
	media()
}

const (
	KindPhoto    = "photo"
	KindDocument = "document"
	KindUploaded = "uploaded"
)

// FromRaw classifies a message media record. Kinds that carry no
// retrievable file yield false.
func FromRaw(raw tg.MessageMediaClass, client Client) (Media, bool) {
	switch m := raw.(type) {
	case nil:
		return nil, false
	case *tg.MessageMediaPhoto:
		if m == nil {
			return nil, false
		}
		return &Photo{raw: m, client: client}, true
	case *tg.MessageMediaDocument:
		if m == nil {
			return nil, false
		}
		return &Document{raw: m, client: client}, true
	case *tg.MessageMediaEmpty,
		*tg.MessageMediaGeo,
		*tg.MessageMediaContact,
		*tg.MessageMediaUnsupported,
		*tg.MessageMediaWebPage,
		*tg.MessageMediaVenue,
		*tg.MessageMediaGame,
		*tg.MessageMediaInvoice,
		*tg.MessageMediaGeoLive,
		*tg.MessageMediaPoll,
		*tg.MessageMediaDice:
		slog.Debug("Unsupported media kind", "type", m.TypeName())
		return nil, false
	default:
		slog.Debug("Unknown media kind", "type", raw.TypeName())
		return nil, false
	}
}

func Kind(m Media) string {
	switch m.(type) {
	case *Photo:
		return KindPhoto
	case *Document:
		return KindDocument
	case *Uploaded:
		return KindUploaded
	default:
		return ""
	}
}
