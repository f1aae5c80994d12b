package query

import "regexp"

// Shortcut expands a single typed token into structured query fields.
// A matching shortcut overwrites both Country and Competition, even with
// empty values.
type Shortcut struct {
	Pattern     *regexp.Regexp
	Country     string
	Competition string
	// Expansion terms are appended to the free terms.
	Expansion  []string
	ForceOrder bool
	Order      DisplayOrder
}

// DefaultShortcuts returns the built-in abbreviation table. Each call
// returns a fresh slice.
func DefaultShortcuts() []Shortcut {
	return []Shortcut{
		{
			Pattern:     regexp.MustCompile(`^(?i)[eb]pl$`),
			Country:     "England",
			Competition: "Premier League",
		},
		{
			Pattern:     regexp.MustCompile(`^(?i)(?:la?)?liga$`),
			Country:     "Spain",
			Competition: "LaLiga",
		},
		{
			Pattern: regexp.MustCompile(`^(?i)u?cl$`),
			Country: "Champions League",
		},
		{
			Pattern: regexp.MustCompile(`^(?i)u?el$`),
			Country: "Europa League",
		},
		{
			Pattern: regexp.MustCompile(`^(?i)ecl$`),
			Country: "Europa Conference League",
		},
		{
			Pattern:     regexp.MustCompile(`^(?i)bundes(?:liga)?$`),
			Country:     "Germany",
			Competition: "Bundesliga",
		},
		{
			Pattern:     regexp.MustCompile(`^(?i)serie[ -]?a$`),
			Country:     "Italy",
			Competition: "Serie A",
		},
		{
			Pattern:     regexp.MustCompile(`^(?i)mls$`),
			Country:     "USA",
			Competition: "MLS",
		},
		{
			Pattern:    regexp.MustCompile(`^(?i)w(?:orld)?c(?:up)?$`),
			Country:    "World Cup",
			ForceOrder: true,
			Order:      ByTime,
		},
		{
			Pattern:    regexp.MustCompile(`^(?i)w(?:omen'?s?)?-*w(?:orld)?-*c(?:up)?$`),
			Country:    "Women's World Cup",
			ForceOrder: true,
			Order:      ByTime,
		},
		{
			Pattern:   regexp.MustCompile(`^(?i)psg$`),
			Expansion: []string{"Paris", "Saint-Germain"},
		},
	}
}
