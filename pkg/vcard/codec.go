// Package vcard converts contact cards to and from vCard 3.0 text.
//
// The conversion is pure: no function in this package performs I/O or keeps state between
// calls, so all of them may be used concurrently.
package vcard

import (
	"iter"
	"strconv"
	"time"

	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

// Codec encodes and decodes vCards. The zero value is ready to use.
type Codec struct {
	// Now returns the time written into the REV line. Defaults to time.Now.
	Now func() time.Time

	// NewID synthesizes the id of a decoded card that carries no UID line. Defaults to
	// "imported-" followed by the current unix time in milliseconds.
	NewID func(now time.Time) string
}

// defaultCodec backs the package level functions.
var defaultCodec = Codec{}

func (c Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Codec) newID() string {
	now := c.now()
	if c.NewID != nil {
		return c.NewID(now)
	}
	return "imported-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// Encode renders a single card as a vCard 3.0 block.
func Encode(card model.ContactCard) string {
	return defaultCodec.Encode(card)
}

// Decode parses a single vCard block. It returns nil if the text holds nothing to parse.
func Decode(text string) *model.ContactCard {
	return defaultCodec.Decode(text)
}

// EncodeMultiple renders all cards and separates the blocks by an empty line.
func EncodeMultiple(cards []model.ContactCard) string {
	return defaultCodec.EncodeMultiple(cards)
}

// Records yields every card that can be decoded from a text holding any number of vCards.
func Records(text string) iter.Seq[model.ContactCard] {
	return defaultCodec.Records(text)
}

// SplitRecords returns every card that can be decoded from a text holding any number of vCards.
func SplitRecords(text string) []model.ContactCard {
	return defaultCodec.SplitRecords(text)
}
