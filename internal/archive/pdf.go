package archive

import (
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mailarc/mailarc/internal/message"
)

// renderPDF runs the configured renderer over the message's displayable
// body. A text-only message is wrapped in a minimal HTML page first.
// Messages with no body at all are skipped.
func (m *Materializer) renderPDF(dir string, msg *message.Message) error {
	body := msg.HTMLBody
	if body == "" {
		if msg.TextBody == "" {
			return nil
		}
		body = "<html><body><pre>" + html.EscapeString(msg.TextBody) + "</pre></body></html>"
	}

	src, err := os.CreateTemp("", "mailarc-*.html")
	if err != nil {
		return fmt.Errorf("create render input: %w", err)
	}
	defer os.Remove(src.Name())

	if _, err := src.WriteString(body); err != nil {
		src.Close()
		return fmt.Errorf("write render input: %w", err)
	}
	if err := src.Close(); err != nil {
		return fmt.Errorf("write render input: %w", err)
	}

	cmd := exec.Command(m.Renderer, src.Name(), filepath.Join(dir, PDFFileName))
	if out, err := cmd.CombinedOutput(); err != nil {
		if detail := strings.TrimSpace(string(out)); detail != "" {
			return fmt.Errorf("%s: %s: %w", m.Renderer, detail, err)
		}
		return fmt.Errorf("%s: %w", m.Renderer, err)
	}
	return nil
}
