package snapshot

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPSource reads snapshots from a directory on an FTP server. Every call
// opens its own control connection.
type FTPSource struct {
	host    string
	dir     string
	user    string
	pass    string
	timeout time.Duration
}

// NewFTPSource parses an ftp:// directory URL. Credentials in the URL win
// over user/pass; both empty means anonymous login.
func NewFTPSource(rawURL, user, pass string, timeout time.Duration) (*FTPSource, error) {
	host, dir, urlUser, urlPass, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, err
	}
	if urlUser != "" {
		user, pass = urlUser, urlPass
	}
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &FTPSource{host: host, dir: dir, user: user, pass: pass, timeout: timeout}, nil
}

// parseFTPURL extracts host (with port), directory and credentials from an FTP URL.
func parseFTPURL(rawURL string) (host, dir, user, pass string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", "", eris.Wrap(err, "parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", "", "", eris.Errorf("expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if host == "" {
		return "", "", "", "", eris.New("empty host in ftp url")
	}
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	dir = u.Path
	if dir == "" {
		dir = "/"
	}
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	return host, dir, user, pass, nil
}

func (s *FTPSource) dial(ctx context.Context) (*ftp.ServerConn, error) {
	zap.L().Debug("ftp: connecting", zap.String("host", s.host), zap.String("dir", s.dir))

	conn, err := ftp.Dial(s.host, ftp.DialWithTimeout(s.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp dial")
	}
	if err := conn.Login(s.user, s.pass); err != nil {
		conn.Quit() //nolint:errcheck
		return nil, eris.Wrap(err, "ftp login")
	}
	return conn, nil
}

// List returns the indices named in an NLST of the directory.
func (s *FTPSource) List(ctx context.Context) ([]int, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() //nolint:errcheck

	names, err := conn.NameList(s.dir)
	if err != nil {
		return nil, eris.Wrap(err, "ftp nlst")
	}
	var out []int
	for _, n := range names {
		if idx, ok := ParseName(n); ok {
			out = append(out, idx)
		}
	}
	return out, nil
}

// Fetch retrieves the indexed file.
func (s *FTPSource) Fetch(ctx context.Context, index int) ([]byte, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() //nolint:errcheck

	resp, err := conn.Retr(path.Join(s.dir, Name(index)))
	if err != nil {
		// 550 is "file unavailable".
		if strings.HasPrefix(err.Error(), "550") {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "ftp retrieve")
	}
	defer resp.Close() //nolint:errcheck

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, eris.Wrap(err, "ftp read")
	}
	return data, nil
}

// Save uploads the indexed file.
func (s *FTPSource) Save(ctx context.Context, index int, data []byte) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Stor(path.Join(s.dir, Name(index)), bytes.NewReader(data)); err != nil {
		return eris.Wrap(err, "ftp store")
	}
	return nil
}
