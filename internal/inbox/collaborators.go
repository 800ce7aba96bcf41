package inbox

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

// Clipboard abstracts the system clipboard.
type Clipboard interface {
	WriteText(text string) error
	// WriteImage places a reference to a stored image on the clipboard.
	WriteImage(ref string) error
}

// PayloadKind distinguishes the outbound share shapes.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadImage
	PayloadImageSet
)

// SharePayload is what gets handed to the share sheet when an item is
// re-shared out of the inbox.
type SharePayload struct {
	Kind      PayloadKind
	Text      string
	ImageRefs []string
}

// ShareSheet abstracts the outbound share mechanism.
type ShareSheet interface {
	Share(payload SharePayload) error
}

// SystemClipboard writes to the OS clipboard. Image refs are written as
// their textual reference, which any receiver can resolve locally.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

func (c SystemClipboard) WriteImage(ref string) error {
	return c.WriteText(ref)
}

// LogShareSheet is the CLI stand-in for a share sheet: it just reports what
// would be shared.
type LogShareSheet struct {
	Log logrus.FieldLogger
}

func (s LogShareSheet) Share(payload SharePayload) error {
	switch payload.Kind {
	case PayloadText:
		s.Log.WithField("text", payload.Text).Info("Sharing text")
	default:
		s.Log.WithField("refs", payload.ImageRefs).Info("Sharing images")
	}
	return nil
}
