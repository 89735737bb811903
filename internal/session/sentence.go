// Package session accumulates confirmed signs into a sentence and fires
// trigger gestures through a cooldown.
package session

import (
	"strings"
	"unicode/utf8"
)

// Kind classifies a recorded sign event.
type Kind string

const (
	KindLetter  Kind = "letter"
	KindWord    Kind = "word"
	KindTrigger Kind = "trigger"
	KindManual  Kind = "manual"
)

// Separator is placed before each word.
const Separator = " "

// KindOf returns KindLetter for single-character symbols and KindWord otherwise.
func KindOf(symbol string) Kind {
	if utf8.RuneCountInString(symbol) == 1 {
		return KindLetter
	}
	return KindWord
}

// Sentence is an ordered list of confirmed symbols. The zero value is empty
// and ready to use. Not safe for concurrent use.
type Sentence struct {
	symbols []string
	text    string
}

// Append adds symbol as a letter or a word depending on its length.
// Empty symbols are ignored.
func (s *Sentence) Append(symbol string) Kind {
	kind := KindOf(symbol)
	switch {
	case symbol == "":
	case kind == KindLetter:
		s.AppendLetter(symbol)
	default:
		s.AppendWord(symbol)
	}
	return kind
}

// AppendLetter appends letter with no separator.
func (s *Sentence) AppendLetter(letter string) {
	if letter == "" {
		return
	}
	s.symbols = append(s.symbols, letter)
	s.text += letter
}

// AppendWord appends word, preceded by a separator unless the sentence is
// empty or already ends in one.
func (s *Sentence) AppendWord(word string) {
	if word == "" {
		return
	}
	if s.text != "" && !strings.HasSuffix(s.text, Separator) {
		s.text += Separator
	}
	s.symbols = append(s.symbols, word)
	s.text += word
}

// Text returns the sentence as entered.
func (s *Sentence) Text() string {
	return s.text
}

// Symbols returns a copy of the confirmed symbols in order.
func (s *Sentence) Symbols() []string {
	return append([]string{}, s.symbols...)
}

// Len returns the number of confirmed symbols.
func (s *Sentence) Len() int {
	return len(s.symbols)
}

// Clear empties the sentence.
func (s *Sentence) Clear() {
	s.symbols = nil
	s.text = ""
}
