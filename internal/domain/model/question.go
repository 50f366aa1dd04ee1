package model

import "time"

// Question is a debugging challenge. Questions are immutable once created;
// the global contest order is created_at ascending with the row id as the
// tie break.
//
// Correct answers are deliberately excluded from JSON: they must never leave
// the server on a contestant-facing response. Admin listings use a dedicated
// view that includes them.
type Question struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	MaxPoints   int    `json:"max_points"`

	BuggyCodeC      string `json:"buggy_code_c"`
	BuggyCodePython string `json:"buggy_code_python"`
	BuggyCodeJava   string `json:"buggy_code_java"`

	CorrectAnswerC      string `json:"-"`
	CorrectAnswerPython string `json:"-"`
	CorrectAnswerJava   string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// BuggyCode returns the starter snippet for a language.
func (q *Question) BuggyCode(lang Language) string {
	switch lang {
	case LanguageC:
		return q.BuggyCodeC
	case LanguagePython:
		return q.BuggyCodePython
	case LanguageJava:
		return q.BuggyCodeJava
	}
	return ""
}

// CorrectAnswer returns the canonical fix for a language.
func (q *Question) CorrectAnswer(lang Language) string {
	switch lang {
	case LanguageC:
		return q.CorrectAnswerC
	case LanguagePython:
		return q.CorrectAnswerPython
	case LanguageJava:
		return q.CorrectAnswerJava
	}
	return ""
}
