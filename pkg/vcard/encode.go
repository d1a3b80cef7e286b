package vcard

import (
	"strings"
	"unicode"

	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

const (
	// lineBreak terminates every line of a vCard.
	lineBreak = "\r\n"

	// blockSeparator separates the vCards of a batch.
	blockSeparator = lineBreak + lineBreak

	// defaultCountry is written and read whenever an address has no country.
	defaultCountry = "United States"

	// revisionLayout is the basic ISO 8601 form used for the REV line.
	revisionLayout = "20060102T150405Z"

	noteSeparator = " | "
	rolesPrefix   = "Roles: "
	rolesJoiner   = ", "
	taxIDPrefix   = "Tax ID: "
	w9OnFileNote  = "W-9 on file"
)

// Encode renders a single card as a vCard 3.0 block. The lines are separated by CRLF. Field
// contents are not validated, only escaped.
func (c Codec) Encode(card model.ContactCard) string {
	name := card.Name
	if name == "" {
		name = card.DisplayName
	}

	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + escape(card.FormattedName()),
	}
	if card.Type == model.CardTypeOrganization {
		lines = append(lines, "N:"+escape(name)+";;;;")
	} else {
		first, last := splitName(name)
		lines = append(lines, "N:"+escape(last)+";"+escape(first)+";;;")
	}
	if card.Type == model.CardTypeOrganization {
		lines = append(lines, "ORG:"+escape(name))
	} else if present(card.Organization) {
		lines = append(lines, "ORG:"+escape(*card.Organization))
	}
	if present(card.Title) {
		lines = append(lines, "TITLE:"+escape(*card.Title))
	}
	if present(card.Email) {
		lines = append(lines, "EMAIL;TYPE=INTERNET:"+escape(*card.Email))
	}
	if present(card.Phone) {
		lines = append(lines, "TEL;TYPE=VOICE:"+escape(*card.Phone))
	}
	if card.Address != nil {
		lines = append(lines, "ADR;TYPE=WORK:"+encodeAddress(*card.Address))
	}
	if notes := encodeNotes(card); len(notes) > 0 {
		lines = append(lines, "NOTE:"+escape(strings.Join(notes, noteSeparator)))
	}
	lines = append(lines,
		"UID:"+escape(card.ID),
		"REV:"+c.now().UTC().Format(revisionLayout),
		"END:VCARD",
	)
	return strings.Join(lines, lineBreak)
}

// EncodeMultiple renders all cards in their given order and separates the blocks by an empty
// line.
func (c Codec) EncodeMultiple(cards []model.ContactCard) string {
	blocks := make([]string, 0, len(cards))
	for _, card := range cards {
		blocks = append(blocks, c.Encode(card))
	}
	return strings.Join(blocks, blockSeparator)
}

// splitName cuts a person's name at the first run of whitespace into given name and family
// name.
func splitName(name string) (first string, last string) {
	name = strings.TrimSpace(name)
	i := strings.IndexFunc(name, unicode.IsSpace)
	if i < 0 {
		return name, ""
	}
	return name[:i], strings.TrimLeftFunc(name[i:], unicode.IsSpace)
}

// encodeAddress renders the seven ADR components. Post office box and extended address are
// always empty.
func encodeAddress(adr model.Address) string {
	country := adr.Country
	if country == "" {
		country = defaultCountry
	}
	return strings.Join([]string{
		"",
		"",
		escape(adr.Street),
		escape(adr.City),
		escape(adr.State),
		escape(adr.ZipCode),
		escape(country),
	}, ";")
}

// encodeNotes collects the sub-notes that are stored in the NOTE line.
func encodeNotes(card model.ContactCard) []string {
	var notes []string
	if len(card.Roles) > 0 {
		notes = append(notes, rolesPrefix+strings.Join(card.Roles, rolesJoiner))
	}
	if present(card.TaxID) {
		notes = append(notes, taxIDPrefix+*card.TaxID)
	}
	if card.W9OnFile != nil && *card.W9OnFile {
		notes = append(notes, w9OnFileNote)
	}
	return notes
}

func present(s *string) bool {
	return s != nil && *s != ""
}
