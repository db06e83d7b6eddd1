package models

import "strings"

// identitySep separates identity fields in the persisted string form. A unit
// separator cannot appear in card names, set codes, or collector numbers.
const identitySep = "\x1f"

// PrintingIdentity names one specific printing of a card. Two copies of the
// same card from different sets, with different collector numbers, or with
// different finishes are distinct identities. The struct is comparable and is
// used directly as a map key.
type PrintingIdentity struct {
	Name            string `json:"name"`
	SetCode         string `json:"set_code"`
	CollectorNumber string `json:"collector_number"`
	Foil            bool   `json:"foil"`
}

// NewPrintingIdentity normalizes the set code to upper case so lookups are
// insensitive to how the source spelled it.
func NewPrintingIdentity(name, setCode, collectorNumber string, foil bool) PrintingIdentity {
	return PrintingIdentity{
		Name:            name,
		SetCode:         strings.ToUpper(setCode),
		CollectorNumber: collectorNumber,
		Foil:            foil,
	}
}

// Key renders the identity as a single string for use in flat storage keys.
func (p PrintingIdentity) Key() string {
	finish := "normal"
	if p.Foil {
		finish = "foil"
	}
	return strings.Join([]string{p.Name, p.SetCode, p.CollectorNumber, finish}, identitySep)
}

// String is the display form, e.g. "Lightning Bolt (M21 #162 foil)".
func (p PrintingIdentity) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.SetCode != "" || p.CollectorNumber != "" || p.Foil {
		b.WriteString(" (")
		parts := make([]string, 0, 3)
		if p.SetCode != "" {
			parts = append(parts, p.SetCode)
		}
		if p.CollectorNumber != "" {
			parts = append(parts, "#"+p.CollectorNumber)
		}
		if p.Foil {
			parts = append(parts, "foil")
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(")")
	}
	return b.String()
}
