package attach

import (
	"errors"
	"fmt"
	"io"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/comtech-lite/internal/model"
)

// FromEmail extracts every attachment part of an RFC 5322 message.
// Parts with an unknown charset are still read.
func FromEmail(r io.Reader) ([]model.Attachment, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("parsing message: %w", err)
	}
	defer mr.Close()

	var out []model.Attachment
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return out, fmt.Errorf("reading message part: %w", err)
		}
		if part == nil {
			continue
		}

		h, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, _ := h.Filename()
		if filename == "" {
			filename = fmt.Sprintf("attachment-%d", len(out)+1)
		}
		contentType, _, _ := h.ContentType()

		body, err := io.ReadAll(part.Body)
		if err != nil {
			return out, fmt.Errorf("reading attachment %s: %w", filename, err)
		}

		out = append(out, FromBytes(filename, contentType, body))
	}

	return out, nil
}
