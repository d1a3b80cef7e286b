package vcard

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

// assertRoundTripFields compares the fields that survive an encode and decode cycle.
func assertRoundTripFields(t *testing.T, expected model.ContactCard, actual model.ContactCard) {
	t.Helper()
	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.FormattedName(), actual.DisplayName)
	assert.Equal(t, expected.Email, actual.Email)
	assert.Equal(t, expected.Phone, actual.Phone)
	assert.Equal(t, expected.Title, actual.Title)
	assert.Equal(t, expected.Organization, actual.Organization)
	assert.Equal(t, expected.TaxID, actual.TaxID)
	assert.Equal(t, expected.W9OnFile, actual.W9OnFile)
	assert.Equal(t, expected.Roles, actual.Roles)
	assert.Equal(t, expected.Address, actual.Address)
}

// TestDecodeRoundTrip encodes a fully populated card and decodes the result. It expects all
// mapped fields to come back unchanged.
func TestDecodeRoundTrip(t *testing.T) {
	codec := testCodec()
	card := fullCard()
	decoded := codec.Decode(codec.Encode(card))
	require.NotNil(t, decoded)
	assertRoundTripFields(t, card, *decoded)
	assert.Equal(t, "Dr. Jane Doe", decoded.Name)
	assert.Equal(t, fixedTime, *decoded.Revision)
}

// TestDecodeMinimal decodes the smallest possible vCard. It expects a person without any optional
// fields.
func TestDecodeMinimal(t *testing.T) {
	decoded := testCodec().Decode("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nUID:p-1\r\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Equal(t, model.ContactCard{
		ID:          "p-1",
		Type:        model.CardTypePerson,
		Name:        "Jane Doe",
		DisplayName: "Jane Doe",
	}, *decoded)
}

// TestDecodeEscapedName decodes an FN line holding escaped delimiters. It expects the original
// display name.
func TestDecodeEscapedName(t *testing.T) {
	original := `Smith, John; "Jr."`
	codec := testCodec()
	decoded := codec.Decode(codec.Encode(model.ContactCard{ID: "e", Type: model.CardTypePerson, DisplayName: original}))
	require.NotNil(t, decoded)
	assert.Equal(t, original, decoded.DisplayName)
	assert.Equal(t, original, decoded.Name)
}

// TestDecodeOrganization decodes a vCard with an ORG line. It expects an organization card.
func TestDecodeOrganization(t *testing.T) {
	decoded := testCodec().Decode("BEGIN:VCARD\nFN:Acme Foundation\nN:Acme Foundation;;;;\nORG:Acme Foundation\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Equal(t, model.CardTypeOrganization, decoded.Type)
	assert.Equal(t, "Acme Foundation", *decoded.Organization)
	assert.Equal(t, "Acme Foundation", decoded.Name)
}

// TestDecodeUnknownFields decodes a vCard with properties that are not mapped. It expects that
// they are ignored.
func TestDecodeUnknownFields(t *testing.T) {
	text := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nX-CUSTOM:foo\r\nBDAY:1970-01-01\r\n" +
		"EMAIL;TYPE=INTERNET:jane@example.org\r\nEND:VCARD"
	decoded := testCodec().Decode(text)
	require.NotNil(t, decoded)
	assert.Equal(t, "Jane Doe", decoded.DisplayName)
	assert.Equal(t, "jane@example.org", *decoded.Email)
}

// TestDecodeSynthesizedID decodes a vCard without UID. It expects an id made from the current
// time, or from the codec's id generator when it has one.
func TestDecodeSynthesizedID(t *testing.T) {
	text := "BEGIN:VCARD\nFN:Jane Doe\nEND:VCARD"
	decoded := testCodec().Decode(text)
	require.NotNil(t, decoded)
	assert.Equal(t, "imported-"+strconv.FormatInt(fixedTime.UnixMilli(), 10), decoded.ID)

	codec := testCodec()
	codec.NewID = func(now time.Time) string { return "generated-" + now.Format("2006") }
	decoded = codec.Decode(text)
	require.NotNil(t, decoded)
	assert.Equal(t, "generated-2026", decoded.ID)

	decoded = Decode("BEGIN:VCARD\nFN:Jane Doe\nUID:\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.True(t, strings.HasPrefix(decoded.ID, "imported-"))
}

// TestDecodeNothingToParse decodes texts without a single property line. It expects nil.
func TestDecodeNothingToParse(t *testing.T) {
	for _, text := range []string{"", "\r\n\r\n", "not a vcard", "   "} {
		assert.Nil(t, Decode(text), "text: "+text)
	}
}

// TestDecodeAddress decodes complete, incomplete and country-less addresses.
func TestDecodeAddress(t *testing.T) {
	codec := testCodec()

	decoded := codec.Decode("BEGIN:VCARD\nFN:A\nADR;TYPE=HOME:PO 1;Apt 2;5 Elm Rd;Dayton;OH;45402;Canada\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Equal(t, &model.Address{
		Street: "5 Elm Rd", City: "Dayton", State: "OH", ZipCode: "45402", Country: "Canada",
	}, decoded.Address)

	decoded = codec.Decode("BEGIN:VCARD\nFN:A\nADR:;;5 Elm Rd;Dayton;OH;45402;\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Equal(t, "United States", decoded.Address.Country)

	decoded = codec.Decode("BEGIN:VCARD\nFN:A\nADR:;;5 Elm Rd;Dayton\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Nil(t, decoded.Address)
}

// TestDecodeNote decodes the NOTE line written for roles, tax id and W-9 flag. It expects all
// three back, and that unrelated notes are dropped.
func TestDecodeNote(t *testing.T) {
	card := model.ContactCard{
		ID:          "n-1",
		Type:        model.CardTypePerson,
		DisplayName: "Jane Doe",
		Roles:       []string{"Board Chair", "Treasurer"},
		TaxID:       ptr("12-3456789"),
		W9OnFile:    ptr(true),
	}
	codec := testCodec()
	decoded := codec.Decode(codec.Encode(card))
	require.NotNil(t, decoded)
	assert.Equal(t, []string{"Board Chair", "Treasurer"}, decoded.Roles)
	assert.Equal(t, "12-3456789", *decoded.TaxID)
	assert.True(t, *decoded.W9OnFile)

	decoded = codec.Decode("BEGIN:VCARD\nFN:A\nNOTE:Met at the spring gala | Tax ID: 11-1111111\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Nil(t, decoded.Roles)
	assert.Nil(t, decoded.W9OnFile)
	assert.Equal(t, "11-1111111", *decoded.TaxID)
}

// TestDecodeAddressBookExport decodes a vCard as written by common address books, with folded
// lines, grouped properties, lower case names and repeated properties. It expects the first
// value of each property.
func TestDecodeAddressBookExport(t *testing.T) {
	text := "BEGIN:VCARD\r\n" +
		"VERSION:3.0\r\n" +
		"fn:Maximilian \r\n" +
		" Mustermann\r\n" +
		"item1.EMAIL;type=INTERNET;type=pref:max@example.org\r\n" +
		"item2.EMAIL;type=INTERNET:other@example.org\r\n" +
		"item1.X-ABLabel:_$!<Other>!$_\r\n" +
		"TEL;type=CELL:+49 151 000\r\n" +
		"REV:2025-11-29T08:30:00Z\r\n" +
		"END:VCARD\r\n"
	decoded := testCodec().Decode(text)
	require.NotNil(t, decoded)
	assert.Equal(t, "Maximilian Mustermann", decoded.DisplayName)
	assert.Equal(t, "max@example.org", *decoded.Email)
	assert.Equal(t, "+49 151 000", *decoded.Phone)
	assert.Equal(t, time.Date(2025, time.November, 29, 8, 30, 0, 0, time.UTC), *decoded.Revision)
}

// TestDecodeWhitespaceOnlyLines decodes a vCard with lines that hold nothing but blanks. It
// expects them to be dropped instead of being joined to the previous line.
func TestDecodeWhitespaceOnlyLines(t *testing.T) {
	decoded := testCodec().Decode("BEGIN:VCARD\r\nFN:Jane\r\n   \r\n\t\r\nTITLE:Treasurer\r\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Equal(t, "Jane", decoded.DisplayName)
	assert.Equal(t, "Treasurer", *decoded.Title)
}

// TestDecodeInvalidRevision decodes a REV line in an unknown format. It expects no revision.
func TestDecodeInvalidRevision(t *testing.T) {
	decoded := testCodec().Decode("BEGIN:VCARD\nFN:A\nREV:yesterday\nEND:VCARD")
	require.NotNil(t, decoded)
	assert.Nil(t, decoded.Revision)
}

// TestUnescape checks the unescaping of single values, including the order dependent case of an
// escaped backslash in front of an 'n'.
func TestUnescape(t *testing.T) {
	assert.Equal(t, "a;b,c\nd\\e", unescape(`a\;b\,c\nd\\e`))
	assert.Equal(t, "C:\\\new", unescape(escape(`C:\new`)))
}
