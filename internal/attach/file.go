// Package attach turns files and e-mail attachments into Attachment
// records with an inline data: URL payload.
package attach

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/comtech-lite/internal/model"
)

const fallbackType = "application/octet-stream"

// FromFile reads the file at path. The id and date are left for the
// store to assign.
func FromFile(path string) (model.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("reading attachment %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), "", data), nil
}

// FromPath reads the attachments a path contributes. A .eml file yields
// the attachments of that message; anything else is one attachment.
func FromPath(path string) ([]model.Attachment, error) {
	if !strings.EqualFold(filepath.Ext(path), ".eml") {
		a, err := FromFile(path)
		if err != nil {
			return nil, err
		}
		return []model.Attachment{a}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return FromEmail(f)
}

// FromBytes builds an attachment from raw content. When contentType is
// empty it is guessed from the name's extension, then from the content.
func FromBytes(name, contentType string, data []byte) model.Attachment {
	if contentType == "" {
		contentType = DetectType(name, data)
	}
	contentType = baseType(contentType)
	return model.Attachment{
		Name:    name,
		Size:    int64(len(data)),
		Type:    contentType,
		DataURL: "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
}

// DetectType guesses a MIME type for a file name and its content.
func DetectType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return baseType(t)
	}
	if len(data) == 0 {
		return fallbackType
	}
	return baseType(http.DetectContentType(data))
}

// Decode returns the payload bytes of a.
func Decode(a model.Attachment) ([]byte, error) {
	rest, ok := strings.CutPrefix(a.DataURL, "data:")
	if !ok {
		return nil, fmt.Errorf("attachment %s: not a data URL", a.Name)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("attachment %s: malformed data URL", a.Name)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding attachment %s: %w", a.Name, err)
	}
	return data, nil
}

// baseType drops parameters such as charset.
func baseType(t string) string {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil || mt == "" {
		return fallbackType
	}
	return mt
}
