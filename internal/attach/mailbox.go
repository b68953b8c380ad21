package attach

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/comtech-lite/internal/model"
)

// Envelope summarizes a mailbox message.
type Envelope struct {
	UID     uint32
	Subject string
	From    string
	Date    time.Time
}

// Mailbox reads messages from an IMAP folder so their attachments can be
// filed against a job.
type Mailbox struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	folder   string
}

// NewMailbox creates a mailbox client from cfg. Nothing is dialled until
// a method is called.
func NewMailbox(cfg model.MailConfig, password string) *Mailbox {
	folder := cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	return &Mailbox{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: password,
		tls:      cfg.TLS,
		folder:   folder,
	}
}

// connect dials, authenticates and selects the folder. The caller must
// log out of the returned client.
func (m *Mailbox) connect(ctx context.Context) (*imapclient.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr := m.host + ":" + m.port

	var client *imapclient.Client
	var err error
	if m.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(m.username, m.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", m.username, err)
	}

	if _, err := client.Select(m.folder, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", m.folder, err)
	}

	return client, nil
}

// Recent lists messages received within the last days days, newest last,
// keeping at most limit of them when limit > 0.
func (m *Mailbox) Recent(ctx context.Context, days, limit int) ([]Envelope, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{Since: time.Now().AddDate(0, 0, -days)}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	})
	defer fetchCmd.Close()

	var envelopes []Envelope
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		envelopes = append(envelopes, envelopeFromBuffer(buf))
	}

	if err := fetchCmd.Close(); err != nil {
		return envelopes, fmt.Errorf("fetching envelopes: %w", err)
	}
	return envelopes, nil
}

// FetchAttachments downloads the message with the given UID and returns
// its attachments. The message is not marked as seen.
func (m *Mailbox) FetchAttachments(ctx context.Context, uid uint32) ([]model.Attachment, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(imap.UID(uid)), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}
	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message %d: %w", uid, err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, nil
	}
	return FromEmail(bytes.NewReader(raw))
}

func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{UID: uint32(buf.UID)}
	if buf.Envelope == nil {
		return env
	}

	env.Subject = buf.Envelope.Subject
	env.Date = buf.Envelope.Date
	if len(buf.Envelope.From) > 0 {
		from := buf.Envelope.From[0]
		if from.Name != "" {
			env.From = from.Name
		} else {
			env.From = from.Addr()
		}
	}
	return env
}
