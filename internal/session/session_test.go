package session

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullProviderReturnsEmpty(t *testing.T) {
	cookies, err := NullProvider{}.Cookies()
	require.NoError(t, err)
	require.Empty(t, cookies)
}

func TestStaticProviderReturnsFixedCookies(t *testing.T) {
	p := NewStaticProvider(map[string]string{"sessionid": "abc123"})
	cookies, err := p.Cookies()
	require.NoError(t, err)
	require.Equal(t, "abc123", cookies["sessionid"])
}

func TestDriverProviderRejectsMissingFile(t *testing.T) {
	_, err := NewDriverProvider("/does/not/exist", nil)
	require.Error(t, err)
}

func TestDriverProviderInvokesExecHook(t *testing.T) {
	f := t.TempDir() + "/driver"
	require.NoError(t, os.WriteFile(f, []byte("#!/bin/sh\n"), 0o755))

	p, err := NewDriverProvider(f, func(path string) (map[string]string, error) {
		return map[string]string{"sessionid": "from-driver"}, nil
	})
	require.NoError(t, err)

	cookies, err := p.Cookies()
	require.NoError(t, err)
	require.Equal(t, "from-driver", cookies["sessionid"])
}
