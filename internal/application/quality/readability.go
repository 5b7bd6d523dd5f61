package quality

import "strings"

// FleschReadingEase 计算 Flesch 易读度，返回裁剪到 0-100 的分数，越高越易读。
// 对同一文本是确定的，空文本返回 0。
func FleschReadingEase(text string) float64 {
	plain := stripMarkdown(text)
	words := strings.Fields(plain)
	wordCount := len(words)
	sentenceCount := countSentences(plain)
	if wordCount == 0 || sentenceCount == 0 {
		return 0
	}

	syllableCount := 0
	for _, w := range words {
		syllableCount += countSyllables(w)
	}

	score := 206.835 -
		1.015*(float64(wordCount)/float64(sentenceCount)) -
		84.6*(float64(syllableCount)/float64(wordCount))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countSyllables 估算单词音节数：统计元音组，词尾哑音 e 减一，至少为 1
func countSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, `.,!?;:"'()[]`))
	if word == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := isVowel(r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
