package message

import (
	"bytes"
	"io"
	netmail "net/mail"
	"strings"
	"unicode/utf8"

	// Registers the charset reader so go-message can decode parts
	// declared in legacy encodings.
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/charmap"
)

// Parse builds a Message from raw RFC 5322 bytes. It never fails: a
// body that cannot be parsed as MIME is kept as plain text, and header
// fields that cannot be read are simply left empty. The raw bytes stay
// untouched either way.
func Parse(raw []byte) *Message {
	msg := &Message{}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		parseFallback(msg, raw)
		return msg
	}
	defer mr.Close()

	h := mr.Header
	msg.MessageID = h.Get("Message-Id")
	msg.Date = h.Get("Date")
	if subject, err := h.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = h.Get("Subject")
	}
	msg.From = h.Get("From")
	msg.To = addressList(h, "To")
	msg.Cc = addressList(h, "Cc")

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch ph := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, params, _ := ph.ContentType()
			filename := params["name"]
			if _, dparams, err := ph.ContentDisposition(); err == nil && dparams["filename"] != "" {
				filename = dparams["filename"]
			}

			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}

			// An inline part carrying a filename is an attachment in
			// all but name.
			if filename != "" {
				msg.Parts = append(msg.Parts, Part{ContentType: contentType, Filename: filename, Size: int64(len(body))})
				msg.Attachments = append(msg.Attachments, Attachment{
					Filename:    filename,
					ContentType: contentType,
					Data:        body,
				})
				continue
			}

			msg.Parts = append(msg.Parts, Part{ContentType: contentType, Size: int64(len(body))})
			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				msg.TextBody = DecodeText(body)
			case strings.HasPrefix(contentType, "text/html"):
				msg.HTMLBody = DecodeText(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := ph.Filename()
			contentType, _, _ := ph.ContentType()

			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}

			msg.Parts = append(msg.Parts, Part{ContentType: contentType, Filename: filename, Size: int64(len(body))})
			msg.Attachments = append(msg.Attachments, Attachment{
				Filename:    filename,
				ContentType: contentType,
				Data:        body,
			})
		}
	}

	return msg
}

// parseFallback handles messages go-message refuses, keeping at least
// the plain headers and an undecoded body.
func parseFallback(msg *Message, raw []byte) {
	m, err := netmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		msg.TextBody = DecodeText(raw)
		return
	}

	msg.MessageID = m.Header.Get("Message-Id")
	msg.Date = m.Header.Get("Date")
	msg.Subject = m.Header.Get("Subject")
	msg.From = m.Header.Get("From")
	if to := m.Header.Get("To"); to != "" {
		msg.To = []string{to}
	}
	if cc := m.Header.Get("Cc"); cc != "" {
		msg.Cc = []string{cc}
	}

	body, err := io.ReadAll(m.Body)
	if err != nil {
		return
	}
	msg.Parts = append(msg.Parts, Part{ContentType: m.Header.Get("Content-Type"), Size: int64(len(body))})
	if strings.HasPrefix(m.Header.Get("Content-Type"), "text/html") {
		msg.HTMLBody = DecodeText(body)
	} else {
		msg.TextBody = DecodeText(body)
	}
}

func addressList(h mail.Header, key string) []string {
	addrs, err := h.AddressList(key)
	if err != nil || len(addrs) == 0 {
		if v := h.Get(key); v != "" {
			return []string{v}
		}
		return nil
	}
	result := make([]string, 0, len(addrs))
	for _, a := range addrs {
		result = append(result, a.String())
	}
	return result
}

// DecodeText decodes message bytes as UTF-8, falling back to
// ISO-8859-1 when they are not valid UTF-8. The fallback maps every
// byte, so decoding never fails outright.
func DecodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}
