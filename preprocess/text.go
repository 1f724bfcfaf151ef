// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	markdownPattern = regexp.MustCompile("[#*`\\[\\]()_~]")
	specialPattern  = regexp.MustCompile(`[^a-zA-Z0-9\s\-]`)
)

// Clean strips URLs, markdown punctuation, diacritics and any character that
// is not an ASCII letter, digit, whitespace or hyphen, then collapses
// whitespace and lowercases. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = foldDiacritics(text)
	text = markdownPattern.ReplaceAllString(text, " ")
	text = specialPattern.ReplaceAllString(text, " ")
	return strings.ToLower(collapse(text))
}

// foldDiacritics maps "café" to "cafe" so accented words survive the ASCII filter.
func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// ReadmeExcerpt returns up to maxWords words of README content, starting at
// the first line that is not a heading, not a badge and longer than 20 bytes.
// When no such line exists the excerpt starts at the top.
func ReadmeExcerpt(readme string, maxWords int) string {
	lines := strings.Split(readme, "\n")

	start := 0
	for i, line := range lines {
		if isContentLine(strings.TrimSpace(line)) {
			start = i
			break
		}
	}

	words := strings.Fields(strings.Join(lines[start:], " "))
	if maxWords >= 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

func isContentLine(line string) bool {
	return !strings.HasPrefix(line, "#") &&
		!strings.Contains(line, "shields.io") &&
		!strings.Contains(line, "badge") &&
		!strings.Contains(line, "![") &&
		len(line) > 20
}

// Truncate keeps the first maxTokens whitespace-separated words.
// Text within the budget is returned unchanged.
func Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}

// TextSimilarity is the Jaccard overlap of the word sets of a and b.
// Two empty texts are identical.
func TextSimilarity(a, b string) float32 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float32(intersection) / float32(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
