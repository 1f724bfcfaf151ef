package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testInput = `
{"record": {"platform": "GitHub", "full_name": "user/logger", "description": "A logging library for applications", "stars": 10}}
{"record": {"platform": "GitHub", "full_name": "user/webfw", "description": "A modern web framework", "stars": 20}}
{"record": {"platform": "GitHub", "full_name": "user/parser", "description": "A JSON parser", "stars": 30}, "readme": "Parses JSON fast."}
`

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"reposcout", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "repos.jsonl")
	require.NoError(t, os.WriteFile(input, []byte(testInput), 0o644))
	global := []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--cache-path", filepath.Join(dir, "cache"),
		"--backend", "mock",
	}
	run := func(args ...string) (string, error) {
		return runApp(t, append(append([]string{}, global...), args...)...)
	}

	out, err := run("index", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 of 3 records")

	t.Run("stats", func(t *testing.T) {
		out, err := run("stats")
		require.NoError(t, err)
		assert.Regexp(t, `Indexed:\s+3`, out)
		assert.Regexp(t, `Stored:\s+3`, out)
	})

	t.Run("hybrid", func(t *testing.T) {
		out, err := run("hybrid", "--limit", "3", "json", "parser")
		require.NoError(t, err)
		assert.Contains(t, out, "GitHub:user/parser")
		assert.Contains(t, out, "REPOSITORY")
	})

	t.Run("search requires a query", func(t *testing.T) {
		_, err := run("search")
		assert.ErrorContains(t, err, "query is required")
	})

	t.Run("remove", func(t *testing.T) {
		out, err := run("remove", "GitHub:user/webfw")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed 1 records")

		out, err = run("stats")
		require.NoError(t, err)
		assert.Regexp(t, `Indexed:\s+2`, out)
	})

	t.Run("remove unknown id fails", func(t *testing.T) {
		_, err := run("remove", "GitHub:nobody/nothing")
		assert.Error(t, err)
	})

	t.Run("rebuild", func(t *testing.T) {
		_, err := run("rebuild", "--batch-size", "1")
		require.NoError(t, err)

		out, err := run("stats")
		require.NoError(t, err)
		assert.Regexp(t, `Indexed:\s+2`, out)
	})

	t.Run("rebuild rejects bad batch size", func(t *testing.T) {
		_, err := run("rebuild", "--batch-size", "0")
		assert.ErrorContains(t, err, "batch-size")
	})

	t.Run("clear", func(t *testing.T) {
		out, err := run("clear")
		require.NoError(t, err)
		assert.Contains(t, out, "Index cleared")

		out, err = run("stats")
		require.NoError(t, err)
		assert.Regexp(t, `Indexed:\s+0`, out)
		assert.Regexp(t, `Stored:\s+0`, out)
	})
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	out, err := runApp(t, "--config", path, "--backend", "mock", "config", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "semantic:")
	assert.Contains(t, out, "backend: mock")
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "semantic_weight:")
}

func TestReadDocs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "json lines",
			input: testInput,
			want:  []string{"user/logger", "user/webfw", "user/parser"},
		},
		{
			name:  "json array",
			input: ` [{"record": {"platform": "GitLab", "full_name": "a/b"}}, {"record": {"platform": "GitHub", "full_name": "c/d"}}]`,
			want:  []string{"a/b", "c/d"},
		},
		{
			name:  "empty input",
			input: "\n  \n",
		},
		{
			name:    "invalid json",
			input:   `{"record": `,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := readDocs(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, d := range docs {
				names = append(names, d.Record.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abcdefg...", truncateText("abcdefghijklmnop", 10))
}

func TestSetupLogger(t *testing.T) {
	newTestApp := func(check func(c *cli.Context)) *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				if check != nil {
					check(c)
				}
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"WaRn", slog.LevelWarn},
			{"ERROR", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newTestApp(nil).Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
				assert.True(t, slog.Default().Enabled(context.Background(), tc.expected))
				if tc.expected > slog.LevelDebug {
					assert.False(t, slog.Default().Enabled(context.Background(), tc.expected-1))
				}
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newTestApp(nil).Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newTestApp(func(c *cli.Context) {
			assert.Equal(t, "debug", c.String("log-level"))
		}).Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}
