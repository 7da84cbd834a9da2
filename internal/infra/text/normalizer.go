// Package text provides the Unicode-aware lookup normalizer used for user names and emails.
package text

import (
	"strings"

	"userstore/internal/domain/service"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// foldNormalizer applies NFKC normalization followed by Unicode case folding,
// so "Alice", "ALICE" and "alice" share one lookup key.
type foldNormalizer struct {
	caser cases.Caser
}

// NewLookupNormalizer is the constructor for the case-folding normalizer.
func NewLookupNormalizer() service.LookupNormalizer {
	return &foldNormalizer{caser: cases.Fold()}
}

// NormalizeName folds a user name. Surrounding whitespace is not significant.
func (n *foldNormalizer) NormalizeName(name string) string {
	return n.fold(name)
}

// NormalizeEmail folds an email address.
func (n *foldNormalizer) NormalizeEmail(email string) string {
	return n.fold(email)
}

func (n *foldNormalizer) fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// cases.Caser is stateful; String resets it before use.
	return n.caser.String(norm.NFKC.String(s))
}
