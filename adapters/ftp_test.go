package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/mvsfs/internal/util"
)

func TestNewFTPClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		src         FTPSource
		wantAddr    string
		wantTimeout time.Duration
	}{
		{"default_port", FTPSource{Host: "mvs.example.com"}, "mvs.example.com:21", defaultFTPTimeout},
		{"explicit_port", FTPSource{Host: "mvs.example.com:2121"}, "mvs.example.com:2121", defaultFTPTimeout},
		{"trimmed_host", FTPSource{Host: "  10.0.0.1 "}, "10.0.0.1:21", defaultFTPTimeout},
		{"ipv6", FTPSource{Host: "::1"}, "[::1]:21", defaultFTPTimeout},
		{"timeout", FTPSource{Host: "h", TimeoutSec: util.Pointer(5)}, "h:21", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewFTPClient(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, c.addr)
			assert.Equal(t, tt.wantTimeout, c.timeout)
		})
	}
}

func TestNewFTPClient_MissingHost(t *testing.T) {
	t.Parallel()

	_, err := NewFTPClient(FTPSource{User: "USERID"})
	assert.Error(t, err)
}

// Not parallel: mutates process environment
func TestNewFTPClient_PasswordEnv(t *testing.T) {
	t.Setenv("MVSFS_TEST_FTP_PASSWORD", "secret")

	c, err := NewFTPClient(FTPSource{Host: "h", PasswordEnv: "MVSFS_TEST_FTP_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, "secret", c.src.Password)

	c, err = NewFTPClient(FTPSource{Host: "h", Password: "inline", PasswordEnv: "MVSFS_TEST_FTP_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, "inline", c.src.Password, "inline password wins")
}

func TestFTPClient_CloseWithoutSession(t *testing.T) {
	t.Parallel()

	c, err := NewFTPClient(FTPSource{Host: "h"})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestRegisterFTP(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	RegisterFTP(r)

	client, err := r.NewClient([]byte("type: ftp\nhost: mvs.example.com\nuser: USERID\ntimeout: 10\n"))
	require.NoError(t, err)
	require.IsType(t, &FTPClient{}, client)
	assert.Equal(t, 10*time.Second, client.(*FTPClient).timeout)

	_, err = r.NewClient([]byte("type: ftp\nuser: USERID\n"))
	assert.Error(t, err)
}
