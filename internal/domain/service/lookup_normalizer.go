package service

// LookupNormalizer produces the keys used for case-insensitive user lookups.
// The same normalizer must be applied when writing and when querying.
type LookupNormalizer interface {
	// NormalizeName folds a user name into its lookup form.
	NormalizeName(name string) string

	// NormalizeEmail folds an email address into its lookup form.
	NormalizeEmail(email string) string
}
