package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mailarc/mailarc/internal/message"
)

// Fixed filenames inside an entry directory.
const (
	RawFileName  = "raw.eml"
	MetaFileName = "metadata.json"
	PDFFileName  = "message.pdf"
)

// Materializer writes all artifacts of one message into an entry
// directory: the verbatim raw bytes, a metadata record, decoded
// attachments and, when a renderer is configured, a PDF of the body.
type Materializer struct {
	// Renderer is the path to a wkhtmltopdf-compatible binary. Empty
	// disables PDF output.
	Renderer string
}

// RenderError marks a failure of the optional PDF step. The entry is
// still complete without the PDF, so callers treat it as a warning
// rather than discarding the other artifacts.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render pdf: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

type partMeta struct {
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size"`
}

type metaRecord struct {
	MessageID string     `json:"message_id,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	From      string     `json:"from,omitempty"`
	To        []string   `json:"to,omitempty"`
	Cc        []string   `json:"cc,omitempty"`
	Date      string     `json:"date,omitempty"`
	Parts     []partMeta `json:"parts"`
}

// Materialize writes every artifact for msg into dir. A failing raw,
// metadata or attachment write aborts with an error; a failing render
// is reported as a *RenderError after everything else succeeded.
func (m *Materializer) Materialize(dir string, msg *message.Message, raw []byte) error {
	if err := os.WriteFile(filepath.Join(dir, RawFileName), raw, 0o644); err != nil {
		return fmt.Errorf("write raw file: %w", err)
	}

	if err := writeMetadata(dir, msg); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	if err := writeAttachments(dir, msg.Attachments); err != nil {
		return err
	}

	if m.Renderer != "" {
		if err := m.renderPDF(dir, msg); err != nil {
			return &RenderError{Err: err}
		}
	}

	return nil
}

func writeMetadata(dir string, msg *message.Message) error {
	record := metaRecord{
		MessageID: msg.MessageID,
		Subject:   msg.Subject,
		From:      msg.From,
		To:        msg.To,
		Cc:        msg.Cc,
		Date:      msg.Date,
		Parts:     make([]partMeta, 0, len(msg.Parts)),
	}
	for _, p := range msg.Parts {
		record.Parts = append(record.Parts, partMeta{
			ContentType: p.ContentType,
			Filename:    p.Filename,
			Size:        p.Size,
		})
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, MetaFileName), append(data, '\n'), 0o644)
}

func writeAttachments(dir string, attachments []message.Attachment) error {
	// Attachment names may not shadow the fixed entry files.
	used := map[string]bool{
		RawFileName:  true,
		MetaFileName: true,
		PDFFileName:  true,
	}

	for _, att := range attachments {
		name := uniqueName(used, safeFilename(att.Filename))
		if err := os.WriteFile(filepath.Join(dir, name), att.Data, 0o644); err != nil {
			return fmt.Errorf("write attachment %s: %w", name, err)
		}
	}
	return nil
}

// safeFilename reduces a declared attachment filename to something
// safe to create under the entry directory.
func safeFilename(name string) string {
	name = filepath.Base(name)
	name = keyStrip.ReplaceAllString(name, "")
	name = strings.Trim(name, ". ")
	if name == "" {
		return "attachment"
	}
	return name
}

// uniqueName suffixes a name with " (1)", " (2)", ... before the
// extension until it no longer collides, and records the result.
func uniqueName(used map[string]bool, name string) string {
	if !used[name] {
		used[name] = true
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
