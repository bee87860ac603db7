package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    command
		wantErr string
	}{
		{
			name: "upload",
			args: []string{"upload", "-user", "u1", "-file", "clip.mp4"},
			want: command{name: "upload", userID: "u1", file: "clip.mp4"},
		},
		{
			name: "list",
			args: []string{"list", "-user", "u1"},
			want: command{name: "list", userID: "u1"},
		},
		{
			name: "download with default output",
			args: []string{"download", "-user", "u1", "-video", "v1"},
			want: command{name: "download", userID: "u1", videoID: "v1", out: "v1.zip"},
		},
		{
			name: "download with output",
			args: []string{"download", "-user", "u1", "-video", "v1", "-out", "/tmp/f.zip"},
			want: command{name: "download", userID: "u1", videoID: "v1", out: "/tmp/f.zip"},
		},
		{name: "no args", args: nil, wantErr: "usage"},
		{name: "unknown command", args: []string{"delete"}, wantErr: `unknown command "delete"`},
		{name: "missing user", args: []string{"list"}, wantErr: "-user is required"},
		{name: "missing file", args: []string{"upload", "-user", "u1"}, wantErr: "-file is required"},
		{name: "missing video", args: []string{"download", "-user", "u1"}, wantErr: "-video is required"},
		{name: "flag of another command", args: []string{"list", "-user", "u1", "-file", "x"}, wantErr: "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
