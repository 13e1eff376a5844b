package cli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want *Config
	}{
		{
			name: "single path",
			args: []string{"works.Artwork.image"},
			want: &Config{FieldPaths: []string{"works.Artwork.image"}, LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "flags after paths",
			args: []string{"works.Artwork.image", "users.User.avatar", "--replace", "-i"},
			want: &Config{
				FieldPaths:    []string{"works.Artwork.image", "users.User.avatar"},
				Replace:       true,
				IgnoreMissing: true,
				LogFormat:     "text",
				LogLevel:      "info",
			},
		},
		{
			name: "interspersed",
			args: []string{"-workers", "4", "media.Image.file", "-no-progress", "works.Series.cover", "-log-level", "DEBUG", "-ignore-missing"},
			want: &Config{
				FieldPaths:    []string{"media.Image.file", "works.Series.cover"},
				IgnoreMissing: true,
				Workers:       4,
				NoProgress:    true,
				LogFormat:     "text",
				LogLevel:      "debug",
			},
		},
		{
			name: "double dash ends flags",
			args: []string{"-i", "media.Image.file", "--", "works.Artwork.image", "-replace"},
			want: &Config{
				FieldPaths:    []string{"media.Image.file", "works.Artwork.image", "-replace"},
				IgnoreMissing: true,
				LogFormat:     "text",
				LogLevel:      "info",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, exit, err := Parse(tc.args, &out)
			require.NoError(t, err)
			assert.False(t, exit)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "<app.model.field app.model.field>")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no paths", nil, "at least one field path is required"},
		{"unknown flag", []string{"--force", "a.b.c"}, "flag provided but not defined: -force"},
		{"negative workers", []string{"-workers", "-1", "a.b.c"}, "invalid workers: must not be negative"},
		{"bad log format", []string{"-log-format", "xml", "a.b.c"}, "invalid log-format: must be 'text' or 'json'"},
		{"bad log level", []string{"-log-level", "loud", "a.b.c"}, "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			exitErr, ok := err.(*ExitError)
			require.True(t, ok, "%T", err)
			assert.Equal(t, 2, exitErr.Code)
			assert.Equal(t, tc.msg, exitErr.Message)
		})
	}
}
