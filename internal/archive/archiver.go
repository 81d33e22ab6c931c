package archive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mailarc/mailarc/internal/message"
	"github.com/mailarc/mailarc/internal/output"
)

// Session is the slice of an IMAP connection the archiver needs: an
// already authenticated client with select, search and fetch.
type Session interface {
	// SelectFolder selects one folder read-only, a single attempt.
	SelectFolder(name string) error
	// SearchSince returns the UIDs of messages sent within the last
	// days days; days <= 0 means all messages.
	SearchSince(days int) ([]uint32, error)
	// FetchRaw fetches the full raw source of one message.
	FetchRaw(uid uint32) ([]byte, error)
}

// Result tallies one archival run. Failed is tracked separately so a
// message that errored is never reported as saved or already archived.
type Result struct {
	Saved  int `json:"saved"`
	Exists int `json:"exists"`
	Failed int `json:"failed"`
}

func (r *Result) Add(other Result) {
	r.Saved += other.Saved
	r.Exists += other.Exists
	r.Failed += other.Failed
}

// Archiver drives one folder at a time through the session, the key
// deriver, the store and the materializer. Messages are processed
// strictly sequentially; one message's failure never aborts the batch.
type Archiver struct {
	session Session
	store   *Store
	mat     *Materializer
	out     *output.Formatter
}

func NewArchiver(session Session, store *Store, mat *Materializer, out *output.Formatter) *Archiver {
	return &Archiver{
		session: session,
		store:   store,
		mat:     mat,
		out:     out,
	}
}

// ArchiveFolder archives every message in one remote folder matching
// the day criterion. Folder selection gets a single retry with every
// "." replaced by "/", for servers that report subfolder hierarchy
// with a dot separator; failing both attempts is an error so no search
// runs against an unselected mailbox.
func (a *Archiver) ArchiveFolder(folder string, days int) (Result, error) {
	var res Result

	if err := a.session.SelectFolder(folder); err != nil {
		alt := strings.ReplaceAll(folder, ".", "/")
		if alt == folder {
			return res, fmt.Errorf("select folder %q: %w", folder, err)
		}
		if err := a.session.SelectFolder(alt); err != nil {
			return res, fmt.Errorf("select folder %q: %w", folder, err)
		}
		a.out.Verbosef("selected %s as %s", folder, alt)
	}

	uids, err := a.session.SearchSince(days)
	if err != nil {
		return res, fmt.Errorf("search folder %q: %w", folder, err)
	}

	for _, uid := range uids {
		raw, err := a.session.FetchRaw(uid)
		if err != nil {
			res.Failed++
			a.out.PrintError(fmt.Errorf("fetch message %d: %w", uid, err))
			continue
		}
		a.archiveMessage(raw, &res)
	}

	return res, nil
}

func (a *Archiver) archiveMessage(raw []byte, res *Result) {
	msg := message.Parse(raw)
	year, key := DeriveKey(msg.MessageID, msg.Date, raw)
	final := a.store.EntryPath(year, key)

	if !a.out.Quiet && !a.out.JSON {
		a.out.Println(final)
	}

	if a.store.Exists(final) {
		res.Exists++
		return
	}

	staging, err := a.store.Stage()
	if err != nil {
		res.Failed++
		a.out.PrintError(fmt.Errorf("%s: %w", final, err))
		return
	}

	if err := a.mat.Materialize(staging, msg, raw); err != nil {
		var renderErr *RenderError
		if errors.As(err, &renderErr) {
			// The entry is complete without the PDF.
			a.out.Warnf("%s: %v", final, renderErr)
		} else {
			a.store.Discard(staging)
			res.Failed++
			a.out.PrintError(fmt.Errorf("%s: %w", final, err))
			return
		}
	}

	committed, err := a.store.Commit(staging, final)
	if err != nil {
		a.store.Discard(staging)
		res.Failed++
		a.out.PrintError(fmt.Errorf("%s: %w", final, err))
		return
	}
	if committed {
		res.Saved++
	} else {
		res.Exists++
	}
}
