// Package text provides the deterministic text cleaning and tokenization
// shared by indexed documents and incoming queries.
//
// The document path and the query path run the same pipeline but apply
// different stopword lists: documents drop a large Indonesian set
// including address boilerplate (jl, rt, rw, kel, kec, ...), while
// queries drop only the most common function words so that brand and
// place names typed by a user always survive. The asymmetry is
// intentional: a term stripped from every document can still appear as a
// query token, it then simply matches no document and contributes
// nothing to any score.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// documentStopwords is the aggressive set applied to indexed documents:
// Indonesian function words plus address abbreviations that appear in
// nearly every catalog row and carry no ranking signal.
var documentStopwords = map[string]struct{}{
	"yang": {}, "di": {}, "dan": {}, "ke": {}, "dari": {}, "ini": {},
	"itu": {}, "dengan": {}, "untuk": {}, "pada": {}, "adalah": {},
	"sebagai": {}, "dalam": {}, "tidak": {}, "akan": {}, "juga": {},
	"atau": {}, "ada": {}, "mereka": {}, "sudah": {}, "saya": {},
	"seperti": {}, "dapat": {}, "jika": {}, "hanya": {}, "oleh": {},
	"saat": {}, "harus": {}, "antara": {}, "setelah": {}, "belum": {},
	"atas": {}, "bawah": {},
	"rt": {}, "rw": {}, "no": {}, "jl": {}, "jalan": {}, "kel": {},
	"kota": {}, "kec": {},
}

// queryStopwords is the permissive set applied to queries: only the very
// common function words.
var queryStopwords = map[string]struct{}{
	"yang": {}, "di": {}, "dan": {}, "ke": {}, "dari": {}, "ini": {},
	"itu": {}, "dengan": {},
}

// Clean lowercases the text, replaces every rune that is not a letter,
// digit, underscore or hyphen with a space, and collapses the result to
// single-space separated words.
func Clean(s string) string {
	s = strings.ToLower(s)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// NormalizeDocument tokenizes the ordered text fields of a document with
// the aggressive document stopword set. A field consisting solely of
// stopwords yields no tokens, which is valid: it simply contributes no
// terms to the document. Never fails; empty input yields an empty slice.
func NormalizeDocument(fields []string) []string {
	var tokens []string
	for _, f := range fields {
		tokens = appendTokens(tokens, f, documentStopwords)
	}
	return tokens
}

// NormalizeQuery tokenizes a query string with the permissive query
// stopword set. Never fails; an empty or all-stopword query yields an
// empty slice.
func NormalizeQuery(query string) []string {
	return appendTokens(nil, query, queryStopwords)
}

func appendTokens(dst []string, s string, stopwords map[string]struct{}) []string {
	for _, tok := range strings.Fields(Clean(s)) {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		dst = append(dst, tok)
	}
	return dst
}
