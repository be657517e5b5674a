package composer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	digitGroup = regexp.MustCompile(`\d+`)
	wordToken  = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// Forms of address a rephrase may capitalize without adding a fact.
var honorifics = map[string]bool{
	"anda": true, "bapak": true, "ibu": true, "kak": true, "kakak": true, "cso": true,
}

// Openers a rephrase may capitalize at the start of a sentence.
var discourseOpeners = map[string]bool{
	"baik": true, "berikut": true, "terima": true, "kasih": true, "mohon": true, "maaf": true,
	"silakan": true, "untuk": true, "saat": true, "jika": true, "apabila": true, "ya": true,
	"halo": true, "sama": true, "sayangnya": true, "namun": true, "tetapi": true, "dengan": true,
	"saya": true, "kami": true, "ini": true, "itu": true, "adalah": true, "di": true, "pada": true,
	"semoga": true, "tentu": true, "sesuai": true, "menurut": true, "berdasarkan": true,
}

// Faithful reports whether candidate introduces no digit group and no capitalized
// word that is absent from grounded. At a sentence start a capitalized word may
// also be a known opener.
func Faithful(grounded, candidate string) bool {
	digits := map[string]bool{}
	for _, d := range digitGroup.FindAllString(grounded, -1) {
		digits[d] = true
	}
	for _, d := range digitGroup.FindAllString(candidate, -1) {
		if !digits[d] {
			return false
		}
	}

	words := map[string]bool{}
	for _, w := range wordToken.FindAllString(grounded, -1) {
		words[strings.ToLower(w)] = true
	}
	for _, loc := range wordToken.FindAllStringIndex(candidate, -1) {
		w := candidate[loc[0]:loc[1]]
		first := []rune(w)[0]
		if !unicode.IsUpper(first) {
			continue
		}
		lw := strings.ToLower(w)
		if words[lw] || honorifics[lw] {
			continue
		}
		if sentenceStart(candidate[:loc[0]]) && discourseOpeners[lw] {
			continue
		}
		return false
	}
	return true
}

// sentenceStart reports whether a word preceded by prefix opens a sentence or line.
func sentenceStart(prefix string) bool {
	p := strings.TrimRight(prefix, " \t*_\"'(")
	if p == "" {
		return true
	}
	switch p[len(p)-1] {
	case '.', '!', '?', ':', '\n', '-':
		return true
	}
	return strings.HasSuffix(prefix, "\n")
}
