package model

import "strings"

// Language is the closed set of contest languages. Each question stores a
// buggy/correct code pair per language.
type Language string

const (
	LanguageC      Language = "c"
	LanguagePython Language = "python"
	LanguageJava   Language = "java"
)

var Languages = []Language{LanguageC, LanguagePython, LanguageJava}

// ParseLanguage normalizes a client-supplied language slug. The bool reports
// whether the slug names a supported language.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageC:
		return LanguageC, true
	case LanguagePython:
		return LanguagePython, true
	case LanguageJava:
		return LanguageJava, true
	}
	return "", false
}
