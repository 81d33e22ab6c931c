package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPort         = 993
	DefaultRemoteFolder = "INBOX"
)

// AllFolders is the special remote folder name that expands to every
// folder the server reports.
const AllFolders = "__ALL__"

// Account holds the resolved connection parameters for one mailbox.
// It is built from a DSN of the form
//
//	imap[s]://user:password@host[:port][/folder][?query]
//
// where query parameters override whatever the rest of the URL implied.
// Recognized parameters are remote_folder (appended to the folder list),
// ssl, name, username and password; anything else lands in Extra so that
// unknown options survive a round trip.
type Account struct {
	Name         string
	Host         string
	Port         int
	Username     string
	Password     string
	RemoteFolder string // comma-separated list of folders
	SSL          bool
	Extra        map[string]string
}

// Folders splits the comma-joined remote folder list.
func (a *Account) Folders() []string {
	var folders []string
	for _, f := range strings.Split(a.RemoteFolder, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			folders = append(folders, f)
		}
	}
	return folders
}

// ParseDSN resolves a connection descriptor into an Account. The name
// argument, when non-empty, presets the account name; the DSN's name
// query parameter still wins.
func ParseDSN(dsn, name string) (*Account, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "imap" && scheme != "imaps" {
		return nil, fmt.Errorf("invalid DSN scheme %q: must be \"imap\" or \"imaps\"", u.Scheme)
	}

	account := &Account{
		Port:         DefaultPort,
		RemoteFolder: DefaultRemoteFolder,
		SSL:          scheme == "imaps",
		Extra:        make(map[string]string),
	}

	account.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid DSN port %q: %w", p, err)
		}
		account.Port = port
	}

	if u.User != nil {
		account.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			account.Password = pw
		}
	}

	if name != "" {
		account.Name = name
	} else {
		account.Name = "account"
		if account.Username != "" {
			account.Name = account.Username
		}
		if account.Host != "" {
			account.Name += "@" + account.Host
		}
	}

	if path := strings.Trim(u.Path, "/"); path != "" {
		account.RemoteFolder = path
	}

	for key, values := range u.Query() {
		value := strings.Join(values, ",")
		switch key {
		case "remote_folder":
			if account.RemoteFolder != "" {
				account.RemoteFolder += "," + value
			} else {
				account.RemoteFolder = value
			}
		case "ssl":
			account.SSL = strings.EqualFold(value, "true")
		case "name":
			account.Name = value
		case "username":
			account.Username = value
		case "password":
			account.Password = value
		default:
			account.Extra[key] = value
		}
	}

	return account, nil
}
