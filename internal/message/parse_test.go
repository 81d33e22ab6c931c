package message

import (
	"strings"
	"testing"
)

const multipartRaw = "From: Alice <alice@example.com>\r\n" +
	"To: bob@example.com\r\n" +
	"Cc: carol@example.com\r\n" +
	"Subject: Hello\r\n" +
	"Message-Id: <m1@example.com>\r\n" +
	"Date: Wed, 01 Jan 2023 10:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"BOUNDARY\"\r\n" +
	"\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"hello body\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>hello</p>\r\n" +
	"--BOUNDARY\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"data.bin\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"aGVsbG8gd29ybGQ=\r\n" +
	"--BOUNDARY--\r\n"

func TestParseMultipart(t *testing.T) {
	msg := Parse([]byte(multipartRaw))

	if msg.MessageID != "<m1@example.com>" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if msg.Date != "Wed, 01 Jan 2023 10:00:00 +0000" {
		t.Errorf("Date = %q", msg.Date)
	}
	if msg.Subject != "Hello" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.From, "alice@example.com") {
		t.Errorf("From = %q", msg.From)
	}
	if len(msg.To) != 1 || !strings.Contains(msg.To[0], "bob@example.com") {
		t.Errorf("To = %v", msg.To)
	}
	if len(msg.Cc) != 1 {
		t.Errorf("Cc = %v", msg.Cc)
	}

	if !strings.Contains(msg.TextBody, "hello body") {
		t.Errorf("TextBody = %q", msg.TextBody)
	}
	if !strings.Contains(msg.HTMLBody, "<p>hello</p>") {
		t.Errorf("HTMLBody = %q", msg.HTMLBody)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("Attachments = %d, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "data.bin" {
		t.Errorf("attachment filename = %q", att.Filename)
	}
	if string(att.Data) != "hello world" {
		t.Errorf("attachment data = %q, want base64-decoded %q", att.Data, "hello world")
	}

	if len(msg.Parts) != 3 {
		t.Errorf("Parts = %d, want 3", len(msg.Parts))
	}
}

func TestParseInlinePartWithFilenameIsAttachment(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: inline image\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/related; boundary=\"B\"\r\n" +
		"\r\n" +
		"--B\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<img src=\"cid:pic\">\r\n" +
		"--B\r\n" +
		"Content-Type: image/png; name=\"pic.png\"\r\n" +
		"Content-Disposition: inline; filename=\"pic.png\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"cG5nLWJ5dGVz\r\n" +
		"--B--\r\n"

	msg := Parse([]byte(raw))

	if len(msg.Attachments) != 1 {
		t.Fatalf("Attachments = %d, want 1", len(msg.Attachments))
	}
	if msg.Attachments[0].Filename != "pic.png" {
		t.Errorf("filename = %q", msg.Attachments[0].Filename)
	}
	if string(msg.Attachments[0].Data) != "png-bytes" {
		t.Errorf("data = %q", msg.Attachments[0].Data)
	}
}

func TestParseSinglePart(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Message-Id: <single@example.com>\r\n" +
		"Subject: plain\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"just a body\r\n"

	msg := Parse([]byte(raw))

	if msg.MessageID != "<single@example.com>" {
		t.Errorf("MessageID = %q", msg.MessageID)
	}
	if !strings.Contains(msg.TextBody, "just a body") {
		t.Errorf("TextBody = %q", msg.TextBody)
	}
	if len(msg.Attachments) != 0 {
		t.Errorf("Attachments = %d, want 0", len(msg.Attachments))
	}
}

func TestParseLatin1Body(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: latin1\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"caf\xe9\r\n"

	msg := Parse([]byte(raw))

	if !strings.Contains(msg.TextBody, "café") {
		t.Errorf("TextBody = %q, want ISO-8859-1 fallback to produce café", msg.TextBody)
	}
}

func TestParseUnparsableBytes(t *testing.T) {
	raw := []byte("this is not an email at all")

	msg := Parse(raw)

	if msg.TextBody != string(raw) {
		t.Errorf("TextBody = %q, want the raw bytes kept", msg.TextBody)
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"valid utf-8", []byte("héllo"), "héllo"},
		{"ascii", []byte("hello"), "hello"},
		{"latin-1 fallback", []byte("caf\xe9"), "café"},
		{"every byte maps", []byte{0xff, 0xfe}, "ÿþ"},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeText(tt.input); got != tt.want {
				t.Errorf("DecodeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
