package model

import "time"

// CardType tells whether a contact card describes a person or an organization.
type CardType string

const (
	CardTypePerson       CardType = "person"
	CardTypeOrganization CardType = "organization"
)

// Valid returns true if the card type is one of the known values.
func (t CardType) Valid() bool {
	return t == CardTypePerson || t == CardTypeOrganization
}

// Address is the postal address of a contact.
type Address struct {
	Street  string `json:"street"  yaml:"street"  binding:"max=255"`
	City    string `json:"city"    yaml:"city"    binding:"max=128"`
	State   string `json:"state"   yaml:"state"   binding:"max=64"`
	ZipCode string `json:"zipCode" yaml:"zipCode" binding:"max=16"`
	Country string `json:"country" yaml:"country" binding:"max=64"`
}

// ContactCard is the data structure for a person or organization that the nonprofit lists as a
// contact. All fields with the exception of the id, type and names are optional. The maximum
// lengths match the columns of the contacts table.
type ContactCard struct {
	ID           string     `json:"id"                     yaml:"id"`
	Type         CardType   `json:"type"                   yaml:"type"                   binding:"omitempty,oneof=person organization"`
	Name         string     `json:"name"                   yaml:"name"                   binding:"max=255"`
	DisplayName  string     `json:"displayName"            yaml:"displayName"            binding:"required_without=Name,max=255"`
	Email        *string    `json:"email,omitempty"        yaml:"email,omitempty"        binding:"omitempty,email,max=255"`
	Phone        *string    `json:"phone,omitempty"        yaml:"phone,omitempty"        binding:"omitempty,max=64"`
	Title        *string    `json:"title,omitempty"        yaml:"title,omitempty"        binding:"omitempty,max=255"`
	Organization *string    `json:"organization,omitempty" yaml:"organization,omitempty" binding:"omitempty,max=255"`
	TaxID        *string    `json:"taxId,omitempty"        yaml:"taxId,omitempty"        binding:"omitempty,max=32"`
	W9OnFile     *bool      `json:"w9OnFile,omitempty"     yaml:"w9OnFile,omitempty"`
	Address      *Address   `json:"address,omitempty"      yaml:"address,omitempty"`
	Roles        []string   `json:"roles,omitempty"        yaml:"roles,omitempty"`
	Revision     *time.Time `json:"revision,omitempty"     yaml:"revision,omitempty"`
}

// FormattedName returns the display name, or the name if no display name is set.
func (c ContactCard) FormattedName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}
