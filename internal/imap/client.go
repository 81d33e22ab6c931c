package imap

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/mailarc/mailarc/internal/archive"
	"github.com/mailarc/mailarc/internal/config"
)

// Client wraps a go-imap v2 connection for one resolved account.
type Client struct {
	account  *config.Account
	password string
	client   *imapclient.Client
}

var _ archive.Session = (*Client)(nil)

func NewClient(account *config.Account, password string) *Client {
	return &Client{
		account:  account,
		password: password,
	}
}

// Addr returns the host:port the client dials.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.account.Host, strconv.Itoa(c.account.Port))
}

func (c *Client) Connect() error {
	addr := c.Addr()

	var (
		client *imapclient.Client
		err    error
	)
	if c.account.SSL {
		options := &imapclient.Options{
			TLSConfig: &tls.Config{ServerName: c.account.Host},
		}
		client, err = imapclient.DialTLS(addr, options)
	} else {
		client, err = imapclient.DialInsecure(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server %s: %w", addr, err)
	}

	if err := client.Login(c.account.Username, c.password).Wait(); err != nil {
		client.Close()
		return fmt.Errorf("IMAP login failed: %w", err)
	}

	c.client = client
	return nil
}

func (c *Client) Close() error {
	if c.client != nil {
		if err := c.client.Logout().Wait(); err != nil {
			// Ignore logout errors, just close
		}
		return c.client.Close()
	}
	return nil
}

// ListFolders returns the names of every folder the server reports.
func (c *Client) ListFolders() ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected")
	}

	listCmd := c.client.List("", "*", nil)
	mailboxes, err := listCmd.Collect()
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	folders := make([]string, 0, len(mailboxes))
	for _, mb := range mailboxes {
		folders = append(folders, mb.Mailbox)
	}
	return folders, nil
}

// SelectFolder selects one folder read-only. One attempt; the caller
// owns any retry policy.
func (c *Client) SelectFolder(name string) error {
	if c.client == nil {
		return fmt.Errorf("not connected")
	}

	options := &imap.SelectOptions{ReadOnly: true}
	if _, err := c.client.Select(name, options).Wait(); err != nil {
		return fmt.Errorf("failed to select folder %s: %w", name, err)
	}
	return nil
}

// SearchSince searches the selected folder for messages sent within
// the last days days; days <= 0 matches all messages.
func (c *Client) SearchSince(days int) ([]uint32, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected")
	}

	criteria := &imap.SearchCriteria{}
	if days > 0 {
		criteria.SentSince = time.Now().AddDate(0, 0, -days)
	}

	data, err := c.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	imapUIDs := data.AllUIDs()
	uids := make([]uint32, 0, len(imapUIDs))
	for _, uid := range imapUIDs {
		uids = append(uids, uint32(uid))
	}
	return uids, nil
}

// FetchRaw fetches the full raw source of one message without setting
// the \Seen flag.
func (c *Client) FetchRaw(uid uint32) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected")
	}

	section := &imap.FetchItemBodySection{Peek: true}
	options := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	}

	fetchCmd := c.client.Fetch(imap.UIDSetNum(imap.UID(uid)), options)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message %d not found", uid)
	}

	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collect message %d: %w", uid, err)
	}

	raw := buf.FindBodySection(section)
	if raw == nil {
		return nil, fmt.Errorf("message %d has no body section", uid)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return raw, nil
}
