package message

// Message is the parsed view of one fetched mail. The raw bytes it was
// parsed from are kept by the caller; everything here is derived.
type Message struct {
	MessageID   string
	Date        string // raw Date header value
	Subject     string
	From        string
	To          []string
	Cc          []string
	TextBody    string
	HTMLBody    string
	Parts       []Part
	Attachments []Attachment
}

// Part describes one MIME part for the metadata listing.
type Part struct {
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size"`
}

// Attachment is a MIME part with a declared filename, body already
// decoded per its transfer encoding.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
