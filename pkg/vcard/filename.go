package vcard

import (
	"path/filepath"
	"strings"
	"unicode"

	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

const (
	// MediaType is the content type of vCard downloads.
	MediaType = "text/vcard; charset=utf-8"

	// FilenameAll is the file name used when several cards are saved together.
	FilenameAll = "contacts.vcf"

	fallbackFilename = "contact.vcf"
)

// Filename returns the name under which a single card is saved, derived from its formatted
// name. Characters that are not letters, digits, '-' or '.' become underscores.
func Filename(card model.ContactCard) string {
	name := strings.TrimSpace(card.FormattedName())
	if name == "" {
		return fallbackFilename
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, name)
	name = strings.Trim(name, "._")
	if name == "" {
		return fallbackFilename
	}
	return name + ".vcf"
}

// IsVCardFile returns true if the file name carries one of the vCard extensions.
func IsVCardFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".vcf", ".vcard":
		return true
	}
	return false
}
