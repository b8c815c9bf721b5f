package fuzzy

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
)

// LevenshteinDistance returns the minimum number of single-rune insertions,
// deletions and substitutions needed to turn a into b
func LevenshteinDistance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// SimilarityRatio returns a case-insensitive edit-distance similarity in [0, 1].
// Two empty strings are identical.
func SimilarityRatio(a, b string) float64 {
	maxLen := max(runeLen(a), runeLen(b))
	if maxLen == 0 {
		return 1
	}
	distance := LevenshteinDistance(strings.ToLower(a), strings.ToLower(b))
	return float64(maxLen-distance) / float64(maxLen)
}

// JaroWinkler returns the case-insensitive Jaro-Winkler similarity of a and b in [0, 1].
//
// The prefix bonus is applied unconditionally for up to four leading runes,
// with a scaling factor of 0.1.
func JaroWinkler(a, b string) float64 {
	s1 := []rune(strings.ToLower(a))
	s2 := []rune(strings.ToLower(b))

	if string(s1) == string(s2) {
		return 1
	}

	len1, len2 := len(s1), len(s2)
	window := max(len1, len2)/2 - 1
	if window < 0 {
		return 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := max(0, i-window)
		end := min(i+window+1, len2)
		for j := start; j < end; j++ {
			if matched2[j] || s1[i] != s2[j] {
				continue
			}
			matched1[i], matched2[j] = true, true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < min(len1, len2, 4); i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}

	return jaro + 0.1*float64(prefix)*(1-jaro)
}

// soundexCodes maps consonants to their soundex digit; unmapped runes are skipped
var soundexCodes = map[rune]rune{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex returns the 4-character phonetic code of s, or "" for empty input.
//
// The first rune is kept as-is (upper-cased). A digit is appended only when it
// differs from the previously appended character, so vowels between two equal
// consonant codes do not split them.
func Soundex(s string) string {
	runes := []rune(strings.ToUpper(s))
	if len(runes) == 0 {
		return ""
	}

	code := make([]rune, 0, 4)
	code = append(code, runes[0])
	for _, r := range runes[1:] {
		if len(code) == 4 {
			break
		}
		digit, ok := soundexCodes[r]
		if ok && digit != code[len(code)-1] {
			code = append(code, digit)
		}
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

// CheckTransposition reports whether b is a with exactly one pair of adjacent runes swapped
func CheckTransposition(a, b string) bool {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) != len(s2) {
		return false
	}

	diffs := make([]int, 0, 2)
	for i := range s1 {
		if s1[i] != s2[i] {
			diffs = append(diffs, i)
			if len(diffs) > 2 {
				return false
			}
		}
	}

	if len(diffs) != 2 || diffs[1]-diffs[0] != 1 {
		return false
	}
	p, q := diffs[0], diffs[1]
	return s1[p] == s2[q] && s1[q] == s2[p]
}

func runeLen(s string) int {
	return len([]rune(s))
}

// splitCityWords splits a municipality on whitespace, commas, hyphens and parentheses
func splitCityWords(city string) []string {
	return strings.FieldsFunc(city, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '-' || r == '(' || r == ')'
	})
}
