package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mailarc/mailarc/internal/output"
)

type fakeSession struct {
	folders  map[string]bool // selectable folder names
	selected []string
	messages map[uint32][]byte
	fetchErr map[uint32]error
}

func (s *fakeSession) SelectFolder(name string) error {
	s.selected = append(s.selected, name)
	if !s.folders[name] {
		return fmt.Errorf("no such folder: %s", name)
	}
	return nil
}

func (s *fakeSession) SearchSince(days int) ([]uint32, error) {
	uids := make([]uint32, 0, len(s.messages)+len(s.fetchErr))
	for uid := range s.messages {
		uids = append(uids, uid)
	}
	for uid := range s.fetchErr {
		uids = append(uids, uid)
	}
	return uids, nil
}

func (s *fakeSession) FetchRaw(uid uint32) ([]byte, error) {
	if err, ok := s.fetchErr[uid]; ok {
		return nil, err
	}
	raw, ok := s.messages[uid]
	if !ok {
		return nil, fmt.Errorf("unknown uid %d", uid)
	}
	return raw, nil
}

func testFormatter() *output.Formatter {
	f := output.New(false, false, false)
	f.Writer = &bytes.Buffer{}
	f.ErrWriter = &bytes.Buffer{}
	f.NoColor = true
	return f
}

func rawMessage(id, date, body string) []byte {
	return []byte("Message-Id: " + id + "\r\n" +
		"Date: " + date + "\r\n" +
		"From: sender@example.com\r\n" +
		"Subject: test\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" + body + "\r\n")
}

func newTestArchiver(t *testing.T, session Session, root string) *Archiver {
	t.Helper()
	return NewArchiver(session, NewStore(root), &Materializer{}, testFormatter())
}

func TestArchiveFolderSavesAllThenSkipsAll(t *testing.T) {
	root := t.TempDir()
	session := &fakeSession{
		folders: map[string]bool{"INBOX": true},
		messages: map[uint32][]byte{
			1: rawMessage("<one@example.com>", "Wed, 01 Jan 2023 10:00:00 +0000", "first"),
			2: rawMessage("<two@example.com>", "Thu, 02 Mar 2023 11:00:00 +0000", "second"),
			3: rawMessage("<three@example.com>", "Fri, 03 Jun 2022 12:00:00 +0000", "third"),
		},
	}

	archiver := newTestArchiver(t, session, root)

	res, err := archiver.ArchiveFolder("INBOX", 0)
	if err != nil {
		t.Fatalf("ArchiveFolder() error = %v", err)
	}
	if res.Saved != 3 || res.Exists != 0 || res.Failed != 0 {
		t.Errorf("first run = %+v, want saved=3 exists=0 failed=0", res)
	}

	for _, p := range []string{
		filepath.Join(root, "2023", "oneexample.com"),
		filepath.Join(root, "2023", "twoexample.com"),
		filepath.Join(root, "2022", "threeexample.com"),
	} {
		if _, err := os.Stat(filepath.Join(p, RawFileName)); err != nil {
			t.Errorf("entry %s missing: %v", p, err)
		}
	}

	// Second run over the same store: everything exists, nothing new.
	res, err = archiver.ArchiveFolder("INBOX", 0)
	if err != nil {
		t.Fatalf("ArchiveFolder() rerun error = %v", err)
	}
	if res.Saved != 0 || res.Exists != 3 || res.Failed != 0 {
		t.Errorf("rerun = %+v, want saved=0 exists=3 failed=0", res)
	}
}

func TestArchiveFolderSelectRetriesWithSlash(t *testing.T) {
	session := &fakeSession{
		folders:  map[string]bool{"INBOX/Drafts": true},
		messages: map[uint32][]byte{},
	}

	archiver := newTestArchiver(t, session, t.TempDir())

	if _, err := archiver.ArchiveFolder("INBOX.Drafts", 0); err != nil {
		t.Fatalf("ArchiveFolder() error = %v", err)
	}

	want := []string{"INBOX.Drafts", "INBOX/Drafts"}
	if len(session.selected) != len(want) {
		t.Fatalf("selected = %v, want %v", session.selected, want)
	}
	for i := range want {
		if session.selected[i] != want[i] {
			t.Errorf("selected[%d] = %q, want %q", i, session.selected[i], want[i])
		}
	}
}

func TestArchiveFolderSelectFailsBothAttempts(t *testing.T) {
	session := &fakeSession{folders: map[string]bool{}}

	archiver := newTestArchiver(t, session, t.TempDir())

	_, err := archiver.ArchiveFolder("INBOX.Drafts", 0)
	if err == nil {
		t.Fatal("expected error when both select attempts fail")
	}
	if !strings.Contains(err.Error(), "INBOX.Drafts") {
		t.Errorf("error %q should name the folder", err)
	}
}

func TestArchiveFolderFetchFailureCountsAsFailed(t *testing.T) {
	session := &fakeSession{
		folders: map[string]bool{"INBOX": true},
		messages: map[uint32][]byte{
			1: rawMessage("<ok@example.com>", "Wed, 01 Jan 2023 10:00:00 +0000", "fine"),
		},
		fetchErr: map[uint32]error{
			2: fmt.Errorf("connection reset"),
		},
	}

	archiver := newTestArchiver(t, session, t.TempDir())

	res, err := archiver.ArchiveFolder("INBOX", 0)
	if err != nil {
		t.Fatalf("ArchiveFolder() error = %v", err)
	}
	if res.Saved != 1 || res.Failed != 1 {
		t.Errorf("result = %+v, want saved=1 failed=1", res)
	}
}

func TestArchiveFolderHashKeyedMessagesDedup(t *testing.T) {
	// No Message-Id: the key is the payload digest, so the identical
	// payload fetched twice lands in the same entry.
	raw := []byte("From: a@example.com\r\nSubject: no id\r\n\r\nbody\r\n")
	root := t.TempDir()

	session := &fakeSession{
		folders:  map[string]bool{"INBOX": true},
		messages: map[uint32][]byte{1: raw},
	}
	archiver := newTestArchiver(t, session, root)

	res, err := archiver.ArchiveFolder("INBOX", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Saved != 1 {
		t.Fatalf("first run saved = %d, want 1", res.Saved)
	}

	session.messages = map[uint32][]byte{7: raw} // same bytes, new uid
	res, err = archiver.ArchiveFolder("INBOX", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Saved != 0 || res.Exists != 1 {
		t.Errorf("rerun = %+v, want saved=0 exists=1", res)
	}

	// Everything landed under year "None".
	entries, err := os.ReadDir(filepath.Join(root, "None"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries under None = %d, want 1", len(entries))
	}
}

func TestResultAdd(t *testing.T) {
	var total Result
	total.Add(Result{Saved: 2, Exists: 1})
	total.Add(Result{Saved: 1, Failed: 3})

	if total.Saved != 3 || total.Exists != 1 || total.Failed != 3 {
		t.Errorf("total = %+v", total)
	}
}
