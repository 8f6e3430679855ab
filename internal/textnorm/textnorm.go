// Package textnorm holds the Unicode normalization shared by training and
// classification so that both sides see the same feature strings.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NFC returns s in Unicode normalization form C.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// Fold returns the NFC, lower-cased form of s. A new Caser is built per call
// because Casers keep state and must not be shared across goroutines.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// FoldAll folds every element of in into a new slice.
func FoldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Fold(s)
	}
	return out
}

// Fields splits s on white space and folds every field.
func Fields(s string) []string {
	return FoldAll(strings.Fields(s))
}
