package service

import "strings"

// blankReplacer maps tabs, the unicode space block, zero-width characters
// and the braille blank onto a plain space.
var blankReplacer = strings.NewReplacer(
	"\t", " ",
	"\u2000", " ", "\u2001", " ", "\u2002", " ", "\u2003", " ",
	"\u2004", " ", "\u2005", " ", "\u2006", " ", "\u2007", " ",
	"\u2008", " ", "\u2009", " ", "\u200a", " ", "\u200b", " ",
	"\u200c", " ", "\u200d", " ", "\u200e", " ", "\u200f", " ",
	"\u2800", " ",
)

// TrimWhitespace normalises user-entered text. Carriage returns are dropped,
// blank-looking characters become spaces, runs of spaces collapse to one,
// lines lose their leading spaces, at most one empty line is kept between
// paragraphs and the result is trimmed. With purgeNewlines every newline
// becomes a space first.
func TrimWhitespace(s string, purgeNewlines bool) string {
	s = strings.ReplaceAll(s, "\r", "")
	if purgeNewlines {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	s = blankReplacer.Replace(s)

	for strings.Contains(s, "\n ") {
		s = strings.ReplaceAll(s, "\n ", "\n")
	}
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}

	return strings.Trim(s, " \n")
}
