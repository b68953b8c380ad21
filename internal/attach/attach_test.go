package attach

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/model"
)

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LOA.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	a, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LOA.PDF", a.Name)
	assert.Equal(t, int64(8), a.Size)
	assert.Equal(t, "application/pdf", a.Type)
	assert.Equal(t, "data:application/pdf;base64,JVBERi0xLjQ=", a.DataURL)
	assert.Empty(t, a.ID)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"extension wins", "photo.png", []byte("not really"), "image/png"},
		{"sniffed", "noext", []byte("%PDF-1.7 rest"), "application/pdf"},
		{"sniffed text drops charset", "notes", []byte("hello"), "text/plain"},
		{"empty", "blank", nil, "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.file, tt.data))
		})
	}
}

func TestDecode(t *testing.T) {
	a := FromBytes("x.bin", "", []byte{0, 1, 2, 250})
	data, err := Decode(a)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 250}, data)

	data, err = Decode(model.Attachment{DataURL: "data:text/plain,hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = Decode(model.Attachment{DataURL: "https://example.com/x"})
	assert.Error(t, err)
	_, err = Decode(model.Attachment{DataURL: "data:;base64,@@@"})
	assert.Error(t, err)
}

const sampleEmail = `From: carrier@example.com
To: ops@example.com
Subject: Port confirmation
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="BOUNDARY"

--BOUNDARY
Content-Type: text/plain; charset=utf-8

See attached.
--BOUNDARY
Content-Type: application/pdf
Content-Disposition: attachment; filename="loa.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQ=
--BOUNDARY
Content-Type: text/csv; charset=us-ascii
Content-Disposition: attachment

a,b
--BOUNDARY--
`

func TestFromEmail(t *testing.T) {
	got, err := FromEmail(strings.NewReader(sampleEmail))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "loa.pdf", got[0].Name)
	assert.Equal(t, "application/pdf", got[0].Type)
	assert.Equal(t, int64(8), got[0].Size)
	data, err := Decode(got[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	assert.Equal(t, "attachment-2", got[1].Name)
	assert.Equal(t, "text/csv", got[1].Type)
}

func TestFromEmail_NoAttachments(t *testing.T) {
	msg := "From: a@example.com\nSubject: hi\nContent-Type: text/plain\n\nbody\n"
	got, err := FromEmail(strings.NewReader(msg))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()

	eml := filepath.Join(dir, "confirmation.EML")
	require.NoError(t, os.WriteFile(eml, []byte(sampleEmail), 0o644))
	got, err := FromPath(eml)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	got, err = FromPath(txt)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "notes.txt", got[0].Name)

	_, err = FromPath(filepath.Join(dir, "missing.eml"))
	assert.Error(t, err)
}

func TestNewMailbox_Defaults(t *testing.T) {
	m := NewMailbox(model.MailConfig{Host: "imap.example.com", Port: "993", TLS: true}, "pw")
	assert.Equal(t, "INBOX", m.folder)
	assert.Equal(t, "pw", m.password)
}
