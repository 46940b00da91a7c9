// Package model contains domain models passed between layers.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the closed set of wager categories a bet card offers.
type Category string

// Wager categories, in their fixed enumeration order.
const (
	CategoryEnlouquecer Category = "enlouquecer"
	CategoryFormar      Category = "formar"
	CategoryJubilar     Category = "jubilar"
)

type categoryInfo struct {
	label    string // ranking label
	title    string // bet card title
	icon     string
	oddsCent int64 // odds in hundredths
}

var categoryTable = map[Category]categoryInfo{ //nolint:gochecknoglobals // read-only lookup table
	CategoryEnlouquecer: {label: "Vai Enlouquecer", title: "Vai Enlouquecer", icon: "🤯", oddsCent: 250},
	CategoryFormar:      {label: "Vai se Formar", title: "Vai se Formar!", icon: "🎓", oddsCent: 380},
	CategoryJubilar:     {label: "Vai Jubilar", title: "Vai Jubilar", icon: "💀", oddsCent: 420},
}

// Categories returns every category in enumeration order.
// The returned slice is a fresh copy.
func Categories() []Category {
	return []Category{CategoryEnlouquecer, CategoryFormar, CategoryJubilar}
}

// Valid reports whether c is one of the recognized categories.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label is the human-readable ranking label. Unknown categories render as their raw key.
func (c Category) Label() string {
	if info, ok := categoryTable[c]; ok {
		return info.label
	}
	return string(c)
}

// Title is the text shown on the bet card; it is also what ParseLabel accepts.
func (c Category) Title() string {
	if info, ok := categoryTable[c]; ok {
		return info.title
	}
	return string(c)
}

// Icon returns the emoji shown next to the category.
func (c Category) Icon() string {
	if info, ok := categoryTable[c]; ok {
		return info.icon
	}
	return "❓"
}

// Odds returns the payout multiplier for the category (zero when unknown).
func (c Category) Odds() decimal.Decimal {
	if info, ok := categoryTable[c]; ok {
		return decimal.New(info.oddsCent, -2)
	}
	return decimal.Zero
}

// ParseLabel maps a bet card title to its category.
// The mapping is exact over the titles returned by Title.
func ParseLabel(label string) (Category, error) {
	label = strings.TrimSpace(label)
	for _, c := range Categories() {
		if categoryTable[c].title == label {
			return c, nil
		}
	}
	return "", ErrUnknownLabel
}

// ParseCategory maps a stored category key to its category.
func ParseCategory(key string) (Category, error) {
	c := Category(strings.TrimSpace(key))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}
