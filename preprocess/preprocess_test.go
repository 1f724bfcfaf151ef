package preprocess

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/reposcout/core"
)

func TestClean(t *testing.T) {
	input := "Hello! This is a **test** with [links](http://example.com) and `code`."
	output := Clean(input)

	assert.NotContains(t, output, "!")
	assert.NotContains(t, output, "*")
	assert.NotContains(t, output, "[")
	assert.NotContains(t, output, "http")
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "test")
	assert.Equal(t, output, strings.ToLower(output))
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Plain words",
		"A **bold** _claim_ ~struck~ `code` #heading",
		"Visit https://example.com/path?x=1 now!",
		"Café naïve résumé – Ünïcödé",
		"tabs\tand\nnewlines\r\nmixed   spacing",
		"snake_case and kebab-case and CamelCase",
		"日本語 text with emoji 🚀 and symbols @#$%^&",
		"http:// https://",
	}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			once := Clean(in)
			assert.Equal(t, once, Clean(once))
		})
	}
}

func TestClean_FoldsDiacritics(t *testing.T) {
	assert.Equal(t, "cafe resume", Clean("Café Résumé"))
}

func TestRecord(t *testing.T) {
	t.Run("contains identity key", func(t *testing.T) {
		records := []*core.Record{
			{Platform: core.PlatformGitHub, FullName: "User/Logger", Description: "A logging library for applications"},
			{Platform: core.PlatformGitLab, FullName: "group/sub_project", Topics: []string{"cli", "tools"}},
			{Platform: core.PlatformBitbucket, FullName: "team/repo.js", Description: "!!!"},
		}
		for _, r := range records {
			text, err := Record(r, "")
			require.NoError(t, err)
			assert.NotEmpty(t, text)
			assert.Contains(t, text, strings.ToLower(r.ID()))
		}
	})

	t.Run("includes fields", func(t *testing.T) {
		r := &core.Record{
			Platform:    core.PlatformGitHub,
			FullName:    "user/logger",
			Description: "A **logging** library",
			Language:    "Go",
			Topics:      []string{"logging", "structured-logs"},
		}
		text, err := Record(r, "")
		require.NoError(t, err)
		assert.Equal(t,
			"github:user/logger github:user/logger go a logging library logging structured-logs",
			text)
	})

	t.Run("readme excerpt appended", func(t *testing.T) {
		r := &core.Record{Platform: core.PlatformGitHub, FullName: "user/logger"}
		readme := "# Logger\n\n![badge](x)\n\nLogger is a fast structured logging package for Go.\n"
		text, err := Record(r, readme)
		require.NoError(t, err)
		assert.Contains(t, text, "fast structured logging package")
		assert.NotContains(t, text, "badge")
	})

	t.Run("truncated to budget", func(t *testing.T) {
		words := make([]string, 1000)
		for i := range words {
			words[i] = fmt.Sprintf("word%d", i)
		}
		r := &core.Record{Platform: core.PlatformGitHub, FullName: "user/big", Description: strings.Join(words, " ")}
		text, err := New(WithMaxTokens(50)).Record(r, "")
		require.NoError(t, err)
		assert.Len(t, strings.Fields(text), 50)
	})

	t.Run("deterministic", func(t *testing.T) {
		r := &core.Record{Platform: core.PlatformGitHub, FullName: "user/logger", Description: "A logging library"}
		a, err := Record(r, "readme body text that is long enough")
		require.NoError(t, err)
		b, err := Record(r, "readme body text that is long enough")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("nil record", func(t *testing.T) {
		_, err := Record(nil, "")
		assert.ErrorIs(t, err, core.ErrPreprocessing)
	})
}

func TestQuery(t *testing.T) {
	text, err := Query("  Logging   LIBRARY! ")
	require.NoError(t, err)
	assert.Equal(t, "logging library", text)

	_, err = Query("!!! ???")
	assert.ErrorIs(t, err, core.ErrPreprocessing)

	_, err = Query("")
	assert.ErrorIs(t, err, core.ErrPreprocessing)
}

func TestTruncate(t *testing.T) {
	words := make([]string, 1000)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	truncated := Truncate(strings.Join(words, " "), 100)
	assert.Len(t, strings.Fields(truncated), 100)

	assert.Equal(t, "short text", Truncate("short text", 100))
}

func TestReadmeExcerpt(t *testing.T) {
	readme := `
# Project Title

[![Build Status](https://shields.io/badge/build-passing-green)]

This is the actual description of the project.
It provides useful context about what the project does.
More information here.
`
	excerpt := ReadmeExcerpt(readme, 20)
	assert.Contains(t, excerpt, "description")
	assert.NotContains(t, excerpt, "shields.io")
	assert.NotContains(t, excerpt, "#")
	assert.LessOrEqual(t, len(strings.Fields(excerpt)), 20)

	t.Run("no content line starts at top", func(t *testing.T) {
		assert.Equal(t, "# Title short", ReadmeExcerpt("# Title\nshort", 10))
	})
}

func TestTextSimilarity(t *testing.T) {
	assert.Greater(t, TextSimilarity("rust web framework", "rust web server framework"), float32(0.5))
	assert.Less(t, TextSimilarity("rust web framework", "completely different words"), float32(0.3))
	assert.Equal(t, float32(1), TextSimilarity("", ""))
	assert.Equal(t, float32(0), TextSimilarity("a", ""))
}
