package media

import (
	"github.com/gotd/td/tg"
)

// Uploaded is a file sent to the server but not yet attached to a message.
// It has a name but nothing to download.
type Uploaded struct {
	file tg.InputFileClass
}

func NewUploaded(file tg.InputFileClass) *Uploaded {
	return &Uploaded{file: file}
}

func (u *Uploaded) media() {}

func (u *Uploaded) File() tg.InputFileClass {
	return u.file
}

func (u *Uploaded) Name() string {
	switch f := u.file.(type) {
	case *tg.InputFile:
		return f.Name
	case *tg.InputFileBig:
		return f.Name
	default:
		return ""
	}
}

func (u *Uploaded) InputLocation() (tg.InputFileLocationClass, bool) {
	return nil, false
}

func (u *Uploaded) String() string {
	if u.file == nil {
		return "Uploaded(nil)"
	}
	return u.file.String()
}
