package sanitizer

import "strings"

// TrimAndNormalize trims s and collapses every run of whitespace to a single
// space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeNotes(notes string) string {
	return TrimAndNormalize(notes)
}

// NormalizeTableNumber uppercases so "t1" and "T1" name the same table.
func NormalizeTableNumber(number string) string {
	return strings.ToUpper(TrimAndNormalize(number))
}
