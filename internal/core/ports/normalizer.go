package ports

// LookupNormalizer produces the canonical comparison form of user names and
// email addresses.
type LookupNormalizer interface {
	NormalizeName(name string) string
	NormalizeEmail(email string) string
}
