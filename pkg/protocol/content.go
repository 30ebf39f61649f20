package protocol

import (
	"unicode/utf8"
)

// Content types
const (
	ContentTypeText  uint8 = 0x00
	ContentTypeImage uint8 = 0x01
)

// Content is one chat message body: UTF-8 text or raw image bytes.
type Content struct {
	Type uint8
	Data []byte
}

// TextContent wraps a string as text content.
func TextContent(s string) Content {
	return Content{Type: ContentTypeText, Data: []byte(s)}
}

// ImageContent wraps raw JPEG/PNG bytes as image content.
func ImageContent(b []byte) Content {
	return Content{Type: ContentTypeImage, Data: b}
}

// Text returns the content as a string. Only meaningful for text content.
func (c Content) Text() string {
	return string(c.Data)
}

// Validate checks the content against the size cap and, for text, UTF-8
// validity.
func (c Content) Validate() error {
	if len(c.Data) > MaxContentSize {
		return ErrContentTooLarge
	}
	switch c.Type {
	case ContentTypeText:
		if !utf8.Valid(c.Data) {
			return ErrMalformed
		}
	case ContentTypeImage:
	default:
		return ErrUnknownContentType
	}
	return nil
}
