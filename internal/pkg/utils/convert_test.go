package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortList(t *testing.T) {
	tests := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{input: "", want: nil},
		{input: "21", want: []int{21}},
		{input: "21, 2121,21", want: []int{21, 2121}},
		{input: "8021-8023,21", want: []int{8021, 8022, 8023, 21}},
		{input: "0", wantErr: true},
		{input: "70000", wantErr: true},
		{input: "ftp", wantErr: true},
		{input: "30-20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePortList(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadList(t *testing.T) {
	got, err := LoadList(" alice, bob ,,carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, got)

	path := filepath.Join(t.TempDir(), "users.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\r\n\r\nbob\n  carol  \n"), 0644))
	got, err = LoadList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, got)

	got, err = LoadList("")
	require.NoError(t, err)
	assert.Nil(t, got)
}
