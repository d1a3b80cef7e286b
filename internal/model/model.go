package model

import (
	"encoding/json"
	"fmt"
	"strings"

	cardmodel "gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

// Columns lists the columns of the contacts table in the order of ContactRow.
var Columns = []string{
	"id", "type", "name", "displayname", "email", "phone", "title", "organization", "taxid",
	"w9onfile", "street", "city", "state", "zipcode", "country", "roles",
}

// ColumnList is Columns ready to be used in a SELECT statement.
var ColumnList = strings.Join(Columns, ", ")

// ContactRow is a contact card as it is stored in the contacts table. The address is flattened
// into its own columns and the roles are kept as a JSON array.
type ContactRow struct {
	Id           string  `db:"id"`
	Type         string  `db:"type"`
	Name         string  `db:"name"`
	DisplayName  string  `db:"displayname"`
	Email        *string `db:"email"`
	Phone        *string `db:"phone"`
	Title        *string `db:"title"`
	Organization *string `db:"organization"`
	TaxId        *string `db:"taxid"`
	W9OnFile     *bool   `db:"w9onfile"`
	Street       *string `db:"street"`
	City         *string `db:"city"`
	State        *string `db:"state"`
	ZipCode      *string `db:"zipcode"`
	Country      *string `db:"country"`
	Roles        *string `db:"roles"`
}

// RowFromCard converts a contact card into its table row.
func RowFromCard(card cardmodel.ContactCard) (ContactRow, error) {
	row := ContactRow{
		Id:           card.ID,
		Type:         string(card.Type),
		Name:         card.Name,
		DisplayName:  card.DisplayName,
		Email:        card.Email,
		Phone:        card.Phone,
		Title:        card.Title,
		Organization: card.Organization,
		TaxId:        card.TaxID,
		W9OnFile:     card.W9OnFile,
	}
	if card.Address != nil {
		row.Street = &card.Address.Street
		row.City = &card.Address.City
		row.State = &card.Address.State
		row.ZipCode = &card.Address.ZipCode
		row.Country = &card.Address.Country
	}
	roles, err := encodeRoles(card.Roles)
	if err != nil {
		return ContactRow{}, err
	}
	row.Roles = roles
	return row, nil
}

// Card converts the table row back into a contact card.
func (r ContactRow) Card() (cardmodel.ContactCard, error) {
	card := cardmodel.ContactCard{
		ID:           r.Id,
		Type:         cardmodel.CardType(r.Type),
		Name:         r.Name,
		DisplayName:  r.DisplayName,
		Email:        r.Email,
		Phone:        r.Phone,
		Title:        r.Title,
		Organization: r.Organization,
		TaxID:        r.TaxId,
		W9OnFile:     r.W9OnFile,
	}
	if r.Street != nil || r.City != nil || r.State != nil || r.ZipCode != nil || r.Country != nil {
		card.Address = &cardmodel.Address{
			Street:  deref(r.Street),
			City:    deref(r.City),
			State:   deref(r.State),
			ZipCode: deref(r.ZipCode),
			Country: deref(r.Country),
		}
	}
	if r.Roles != nil {
		if err := json.Unmarshal([]byte(*r.Roles), &card.Roles); err != nil {
			return cardmodel.ContactCard{}, fmt.Errorf("invalid roles of contact %s: %w", r.Id, err)
		}
	}
	return card, nil
}

// ContactPatch holds the values of a partial update. Only fields that are not nil are written.
type ContactPatch struct {
	Type         *cardmodel.CardType `json:"type"         binding:"omitempty,oneof=person organization"`
	Name         *string             `json:"name"         binding:"omitempty,max=255"`
	DisplayName  *string             `json:"displayName"  binding:"omitempty,max=255"`
	Email        *string             `json:"email"        binding:"omitempty,email,max=255"`
	Phone        *string             `json:"phone"        binding:"omitempty,max=64"`
	Title        *string             `json:"title"        binding:"omitempty,max=255"`
	Organization *string             `json:"organization" binding:"omitempty,max=255"`
	TaxID        *string             `json:"taxId"        binding:"omitempty,max=32"`
	W9OnFile     *bool               `json:"w9OnFile"`
	Address      *cardmodel.Address  `json:"address"`
	Roles        *[]string           `json:"roles"`
}

// ClearsName returns true if the patch sets the name or the display name to an empty string.
func (p ContactPatch) ClearsName() bool {
	return (p.Name != nil && *p.Name == "") || (p.DisplayName != nil && *p.DisplayName == "")
}

// LeavesNamesEmpty returns true if the card would have neither a name nor a display name once
// the patch is applied to it.
func (p ContactPatch) LeavesNamesEmpty(current cardmodel.ContactCard) bool {
	name, displayName := current.Name, current.DisplayName
	if p.Name != nil {
		name = *p.Name
	}
	if p.DisplayName != nil {
		displayName = *p.DisplayName
	}
	return name == "" && displayName == ""
}

// Assignments returns the columns to be updated together with their new values, in a stable
// order.
func (p ContactPatch) Assignments() ([]string, []interface{}, error) {
	var columns []string
	var args []interface{}
	add := func(column string, value interface{}) {
		columns = append(columns, column)
		args = append(args, value)
	}
	if p.Type != nil {
		add("type", string(*p.Type))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.DisplayName != nil {
		add("displayname", *p.DisplayName)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Organization != nil {
		add("organization", *p.Organization)
	}
	if p.TaxID != nil {
		add("taxid", *p.TaxID)
	}
	if p.W9OnFile != nil {
		add("w9onfile", *p.W9OnFile)
	}
	if p.Address != nil {
		add("street", p.Address.Street)
		add("city", p.Address.City)
		add("state", p.Address.State)
		add("zipcode", p.Address.ZipCode)
		add("country", p.Address.Country)
	}
	if p.Roles != nil {
		roles, err := encodeRoles(*p.Roles)
		if err != nil {
			return nil, nil, err
		}
		add("roles", roles)
	}
	return columns, args, nil
}

// encodeRoles stores the roles as a JSON array. An empty list is stored as NULL.
func encodeRoles(roles []string) (*string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(roles)
	if err != nil {
		return nil, fmt.Errorf("could not encode roles: %w", err)
	}
	s := string(encoded)
	return &s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
