package adapters

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/mvsfs"
	"github.com/brettbedarf/mvsfs/internal/util"
)

const (
	defaultFTPPort    = "21"
	defaultFTPTimeout = 30 * time.Second
)

// FTPSource contains ftp-specific source fields
type FTPSource struct {
	Host        string `yaml:"host" json:"host"` // host or host:port
	User        string `yaml:"user" json:"user"`
	Password    string `yaml:"password,omitempty" json:"password,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty" json:"password_env,omitempty"` // read the password from this variable
	TimeoutSec  *int   `yaml:"timeout,omitempty" json:"timeout,omitempty"`           // Default 30
	DisableEPSV bool   `yaml:"disable_epsv,omitempty" json:"disable_epsv,omitempty"`
}

// RegisterFTP registers the ftp provider on r.
func RegisterFTP(r *Registry) {
	r.Register(FTPSourceType, ProviderFunc(func(raw []byte) (mvsfs.ListingClient, error) {
		var src FTPSource
		if err := yaml.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		return NewFTPClient(src)
	}))
}

// FTPClient implements [mvsfs.ListingClient] on an FTP connection to a z/OS
// host. The connection is opened on first use and reused until Close.
// Commands run one at a time and cannot be interrupted once sent.
type FTPClient struct {
	src     FTPSource
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn *ftp.ServerConn
}

// NewFTPClient validates src and returns a client that has not dialed yet.
func NewFTPClient(src FTPSource) (*FTPClient, error) {
	host := strings.TrimSpace(src.Host)
	if host == "" {
		return nil, fmt.Errorf("ftp source: host is required")
	}
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, defaultFTPPort)
	}
	if src.PasswordEnv != "" && src.Password == "" {
		src.Password = os.Getenv(src.PasswordEnv)
	}
	return &FTPClient{
		src:     src,
		addr:    addr,
		timeout: time.Duration(util.ValueOrDefault(src.TimeoutSec, int(defaultFTPTimeout/time.Second))) * time.Second,
	}, nil
}

// ListNames runs NLST.
func (c *FTPClient) ListNames(ctx context.Context, queryPath string) ([]string, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	names, err := conn.NameList(queryPath)
	if err != nil {
		return nil, c.dropOnError(fmt.Errorf("NLST %s: %w", queryPath, err))
	}
	return names, nil
}

// ListFilesPaged runs LIST once and pages through the result.
func (c *FTPClient) ListFilesPaged(ctx context.Context, queryPath string, _ int) (mvsfs.PageIterator, error) {
	entries, err := c.ListFiles(ctx, queryPath)
	if err != nil {
		return nil, err
	}
	return newSlicePager(entries), nil
}

// ListFiles runs LIST. Lines the FTP library cannot parse are dropped by it,
// so entries never carry raw lines.
func (c *FTPClient) ListFiles(ctx context.Context, queryPath string) ([]mvsfs.FileEntry, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	list, err := conn.List(queryPath)
	if err != nil {
		return nil, c.dropOnError(fmt.Errorf("LIST %s: %w", queryPath, err))
	}
	entries := make([]mvsfs.FileEntry, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		entries = append(entries, mvsfs.FileEntry{
			Name:      e.Name,
			Size:      int64(e.Size),
			Timestamp: e.Time,
		})
	}
	return entries, nil
}

// Close ends the session if one is open.
func (c *FTPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Quit()
	c.conn = nil
	return err
}

func (c *FTPClient) connect(ctx context.Context) (*ftp.ServerConn, error) {
	logger := util.GetLogger("FTP.Connect")

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	conn, err := ftp.Dial(c.addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(c.timeout),
		ftp.DialWithDisabledEPSV(c.src.DisableEPSV),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	if err := conn.Login(c.src.User, c.src.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("failed to log in to %s as %s: %w", c.addr, c.src.User, err)
	}
	logger.Debug().Str("addr", c.addr).Str("user", c.src.User).Msg("FTP session opened")
	c.conn = conn
	return conn, nil
}

// dropOnError discards the session after a network level failure so the next
// call reconnects. Server replies like 550 keep the session.
func (c *FTPClient) dropOnError(err error) error {
	var netErr net.Error
	if !errors.As(err, &netErr) {
		return err
	}
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Quit()
		c.conn = nil
	}
	c.mu.Unlock()
	return err
}

var _ mvsfs.ListingClient = (*FTPClient)(nil)
