package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFleschReadingEase(t *testing.T) {
	assert.Equal(t, 0.0, FleschReadingEase(""))
	assert.Equal(t, 0.0, FleschReadingEase("   \n  "))

	simple := "The cat sat. The dog ran. We like it. It is fun."
	complex := "Notwithstanding considerable organizational complexities, interdisciplinary collaboration necessitates comprehensive administrative coordination throughout heterogeneous institutional environments."

	simpleScore := FleschReadingEase(simple)
	complexScore := FleschReadingEase(complex)

	assert.Greater(t, simpleScore, 80.0)
	assert.Greater(t, simpleScore, complexScore)
	assert.GreaterOrEqual(t, complexScore, 0.0)
	assert.LessOrEqual(t, simpleScore, 100.0)
}

func TestFleschIgnoresMarkdownMarkup(t *testing.T) {
	plain := "The cat sat on the mat. It was happy there."
	marked := "## The cat sat on the mat. It was **happy** there."
	assert.InDelta(t, FleschReadingEase(plain), FleschReadingEase(marked), 0.001)
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":      1,
		"happy":    2,
		"syllable": 2, // 启发式把词尾哑音 e 减掉

		"bike":     1, // 词尾哑音 e
		"the":      1,
		"a":        1,
		"":         1,
	}
	for word, want := range cases {
		assert.Equal(t, want, countSyllables(word), "word %q", word)
	}
}

func TestStripMarkdown(t *testing.T) {
	text := "# Title\n\nSome *bold* text with a [link](https://example.com) inside."
	got := stripMarkdown(text)
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "*")
	assert.NotContains(t, got, "](")
	assert.Contains(t, got, "link")
	assert.Contains(t, got, "Title")
}
