package media

import (
	"context"
	"reflect"

	"github.com/gotd/td/tg"
)

type Document struct {
	raw    *tg.MessageMediaDocument
	client Client
}

func (d *Document) media() {}

func (d *Document) Raw() *tg.MessageMediaDocument {
	return d.raw
}

func (d *Document) ID() (int64, error) {
	switch doc := d.raw.Document.(type) {
	case *tg.Document:
		return doc.ID, nil
	case *tg.DocumentEmpty:
		return doc.ID, nil
	default:
		return 0, ErrMissingInner
	}
}

func (d *Document) FileName() string {
	doc, ok := d.raw.Document.(*tg.Document)
	if !ok {
		return ""
	}
	for _, attr := range doc.Attributes {
		if name, ok := attr.(*tg.DocumentAttributeFilename); ok {
			return name.FileName
		}
	}
	return ""
}

func (d *Document) MimeType() string {
	if doc, ok := d.raw.Document.(*tg.Document); ok {
		return doc.MimeType
	}
	return ""
}

func (d *Document) Size() int64 {
	if doc, ok := d.raw.Document.(*tg.Document); ok {
		return doc.Size
	}
	return 0
}

// Download fetches the document content to path. Deleted or absent
// documents are skipped without touching path.
func (d *Document) Download(ctx context.Context, path string) error {
	location, ok := d.InputLocation()
	if !ok {
		return nil
	}
	if d.client == nil {
		return ErrNoClient
	}

	if err := d.client.DownloadMediaAtLocation(ctx, location, path); err != nil {
		return &ErrTransferFailed{Location: location, Path: path, Err: err}
	}
	return nil
}

func (d *Document) InputLocation() (tg.InputFileLocationClass, bool) {
	doc, ok := d.raw.Document.(*tg.Document)
	if !ok {
		return nil, false
	}
	return &tg.InputDocumentFileLocation{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
	}, true
}

func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return reflect.DeepEqual(d.raw, other.raw)
}

func (d *Document) String() string {
	return d.raw.String()
}
