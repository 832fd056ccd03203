// Package docfmt renders retrieved chunks into a single prompt-ready string.
package docfmt

import (
	"errors"
	"fmt"
	"strings"
)

// Separator is placed between consecutive documents.
const Separator = "\n\n"

// ErrMissingContent is returned when a document carries no text at all.
var ErrMissingContent = errors.New("document has no content")

// Document is anything with optional text. ok is false when the text is
// absent, which is different from present-but-empty.
type Document interface {
	TextContent() (text string, ok bool)
}

// Doc is a plain in-memory Document.
type Doc struct {
	Content *string
}

func (d Doc) TextContent() (string, bool) {
	if d.Content == nil {
		return "", false
	}
	return *d.Content, true
}

// Text builds a Doc with content s.
func Text(s string) Doc { return Doc{Content: &s} }

// FormatDocs joins the documents' text with a blank line in input order. Text
// is used verbatim. An empty slice yields "".
func FormatDocs[D Document](docs []D) (string, error) {
	if len(docs) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, d := range docs {
		text, ok := d.TextContent()
		if !ok {
			return "", fmt.Errorf("document %d: %w", i, ErrMissingContent)
		}
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
