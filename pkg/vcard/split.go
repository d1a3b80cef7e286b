package vcard

import (
	"iter"
	"regexp"

	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

// beginPattern finds the start of a vCard regardless of case.
var beginPattern = regexp.MustCompile(`(?i)BEGIN:VCARD`)

// Blocks yields the unchanged text of every vCard in a text, each from its BEGIN:VCARD up to the
// next one. Text before the first BEGIN:VCARD is ignored.
func Blocks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		starts := beginPattern.FindAllStringIndex(text, -1)
		for i, start := range starts {
			end := len(text)
			if i+1 < len(starts) {
				end = starts[i+1][0]
			}
			if !yield(text[start[0]:end]) {
				return
			}
		}
	}
}

// Records yields the cards of a text that holds any number of vCards, in the order in which
// they appear. Text before the first BEGIN:VCARD is ignored and so are blocks that cannot be
// decoded.
func (c Codec) Records(text string) iter.Seq[model.ContactCard] {
	return func(yield func(model.ContactCard) bool) {
		for block := range Blocks(text) {
			card := c.Decode(block)
			if card == nil {
				continue
			}
			if !yield(*card) {
				return
			}
		}
	}
}

// SplitRecords returns the cards of a text that holds any number of vCards. The result is
// empty, but not nil, if the text holds none.
func (c Codec) SplitRecords(text string) []model.ContactCard {
	cards := []model.ContactCard{}
	for card := range c.Records(text) {
		cards = append(cards, card)
	}
	return cards
}
