package vcard

import (
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

// revisionLayouts are the REV forms that Decode understands.
var revisionLayouts = []string{revisionLayout, time.RFC3339}

// property is one content line of a vCard.
type property struct {
	name  string
	value string
}

// Decode parses a single vCard block into a card. Unknown properties are ignored and so are
// repetitions of a known property; the first occurrence wins. A missing UID is replaced by a
// synthesized id. Decode returns nil if the text holds no content line at all.
func (c Codec) Decode(text string) *model.ContactCard {
	props := parseProperties(text)
	if len(props) == 0 {
		return nil
	}
	values := make(map[string]string, len(props))
	for _, p := range props {
		if _, seen := values[p.name]; !seen {
			values[p.name] = p.value
		}
	}

	card := model.ContactCard{
		ID:          values["UID"],
		Type:        model.CardTypePerson,
		Name:        values["FN"],
		DisplayName: values["FN"],
	}
	if card.ID == "" {
		card.ID = c.newID()
	}
	if org, ok := values["ORG"]; ok {
		card.Type = model.CardTypeOrganization
		card.Organization = optional(org)
	}
	card.Email = optional(values["EMAIL"])
	card.Phone = optional(values["TEL"])
	card.Title = optional(values["TITLE"])
	if adr, ok := values["ADR"]; ok {
		card.Address = decodeAddress(adr)
	}
	if note, ok := values["NOTE"]; ok {
		decodeNotes(note, &card)
	}
	if rev, ok := values["REV"]; ok {
		card.Revision = decodeRevision(rev)
	}
	return &card
}

// parseProperties splits the text into content lines. Blank lines are dropped, folded lines are
// joined, and lines without a colon are skipped. Type parameters and group prefixes are stripped
// from the names.
func parseProperties(text string) []property {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}

	props := make([]property, 0, len(lines))
	for _, line := range lines {
		head, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name, _, _ := strings.Cut(head, ";")
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		props = append(props, property{
			name:  strings.ToUpper(strings.TrimSpace(name)),
			value: unescape(value),
		})
	}
	return props
}

// decodeAddress maps the seven ADR components onto an address. Post office box and extended
// address are dropped. Addresses with fewer components are rejected.
func decodeAddress(value string) *model.Address {
	parts := strings.Split(value, ";")
	if len(parts) < 7 {
		return nil
	}
	adr := model.Address{
		Street:  parts[2],
		City:    parts[3],
		State:   parts[4],
		ZipCode: parts[5],
		Country: parts[6],
	}
	if adr.Country == "" {
		adr.Country = defaultCountry
	}
	return &adr
}

// decodeNotes reads roles, tax id and the W-9 flag back from the NOTE value. Other notes are
// dropped.
func decodeNotes(value string, card *model.ContactCard) {
	for _, note := range strings.Split(value, noteSeparator) {
		switch {
		case strings.HasPrefix(note, rolesPrefix):
			for _, role := range strings.Split(strings.TrimPrefix(note, rolesPrefix), rolesJoiner) {
				if role != "" {
					card.Roles = append(card.Roles, role)
				}
			}
		case strings.HasPrefix(note, taxIDPrefix):
			card.TaxID = optional(strings.TrimPrefix(note, taxIDPrefix))
		case note == w9OnFileNote:
			onFile := true
			card.W9OnFile = &onFile
		}
	}
}

func decodeRevision(value string) *time.Time {
	for _, layout := range revisionLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
