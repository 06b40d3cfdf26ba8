package brute

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictManager_Defaults(t *testing.T) {
	list := NewDictManager().Generate(nil)

	require.NotEmpty(t, list)
	assert.Equal(t, Auth{Username: "anonymous", Password: ""}, list[0])
	assert.Contains(t, list, Auth{Username: "ftp", Password: "ftp123"})

	// %user% 替换后与字面口令重复的组合只保留一次
	want := map[Auth]struct{}{anonymousAuth: {}}
	for _, u := range DefaultFTPUsers {
		for _, p := range DefaultFTPPasswords {
			want[Auth{Username: u, Password: strings.ReplaceAll(p, "%user%", u)}] = struct{}{}
		}
	}
	assert.Len(t, list, len(want))
	assert.Less(t, len(want), 1+len(DefaultFTPUsers)*len(DefaultFTPPasswords))

	count := make(map[Auth]int)
	for _, a := range list {
		count[a]++
	}
	for _, a := range []Auth{{"ftp", "ftp"}, {"admin", "admin"}, {"test", "test"}} {
		assert.Equal(t, 1, count[a], "%s:%s", a.Username, a.Password)
	}
}

func TestDictManager_Cartesian(t *testing.T) {
	list := NewDictManager().Generate(map[string]interface{}{
		"users":     []string{"alice", "bob"},
		"passwords": "secret1, %user%!",
	})

	assert.Equal(t, []Auth{
		{"alice", "secret1"},
		{"alice", "alice!"},
		{"bob", "secret1"},
		{"bob", "bob!"},
	}, list)
}

func TestDictManager_NoBruteforce(t *testing.T) {
	list := NewDictManager().Generate(map[string]interface{}{
		"users":         []string{"alice", "bob", "carol"},
		"passwords":     []interface{}{"secret1", "hunter2"},
		"no_bruteforce": true,
	})

	assert.Equal(t, []Auth{{"alice", "secret1"}, {"bob", "hunter2"}}, list)
}

func TestDictManager_KeepsEmptyPassword(t *testing.T) {
	list := NewDictManager().Generate(map[string]interface{}{
		"users":     []string{"anonymous"},
		"passwords": []string{"", "-"},
	})

	assert.Equal(t, []Auth{{"anonymous", ""}, {"anonymous", "-"}}, list)
}

func TestDictManager_Dedup(t *testing.T) {
	list := NewDictManager().Generate(map[string]interface{}{
		"users":     []string{"root", "root"},
		"passwords": []string{"x"},
	})
	assert.Len(t, list, 1)
}
