package watcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExcludeSetMatchesDefaults(t *testing.T) {
	set, err := NewExcludeSet(nil)
	require.NoError(t, err)

	cases := []struct {
		path    string
		excl bool
	}{
		{"/proj/node_modules/react/index.js", true},
		{"/proj/.git/HEAD", true},
		{"/proj/target/release/app", true},
		{"/proj/src/main.go", false},
		{"/proj/README.md", false},
	}
	for _, c := range cases {
		require.Equal(t, c.excl, set.Match(c.path), c.path)
	}
}

func TestExcludeSetMergesUserPatterns(t *testing.T) {
	set, err := NewExcludeSet([]string{`secrets-vault`})
	require.NoError(t, err)

	require.True(t, set.Match("/proj/secrets-vault/key.pem"))
	require.True(t, set.Match("/proj/node_modules/x"), "default excludes still apply")
}
