package service

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/99minutos/identity-store/internal/core/ports"
)

var _ ports.LookupNormalizer = UpperInvariantNormalizer{}

// UpperInvariantNormalizer upper-cases names and emails without any
// language-specific mapping.
type UpperInvariantNormalizer struct{}

func (UpperInvariantNormalizer) NormalizeName(name string) string {
	return cases.Upper(language.Und).String(name)
}

func (UpperInvariantNormalizer) NormalizeEmail(email string) string {
	return cases.Upper(language.Und).String(email)
}
