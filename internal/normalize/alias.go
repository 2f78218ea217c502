package normalize

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Alias maps a broker instrument name to a canonical symbol.
type Alias struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// DefaultAliases is the built-in alias table.
var DefaultAliases = []Alias{
	{Name: "US Tech 100", Symbol: "NASDAQ"},
	{Name: "SPOT GOLD", Symbol: "XAUUSD"},
}

// AliasTable canonicalizes instrument names. Entries are matched in order.
type AliasTable struct {
	aliases []Alias
	folded  []string
	fold    cases.Caser
}

// NewAliasTable builds a table from aliases, in priority order.
func NewAliasTable(aliases []Alias) *AliasTable {
	t := &AliasTable{
		aliases: append([]Alias(nil), aliases...),
		folded:  make([]string, len(aliases)),
		fold:    cases.Fold(),
	}
	for i, a := range t.aliases {
		t.folded[i] = t.fold.String(a.Name)
	}
	return t
}

// DefaultAliasTable returns a table with DefaultAliases followed by extra.
func DefaultAliasTable(extra ...Alias) *AliasTable {
	all := make([]Alias, 0, len(DefaultAliases)+len(extra))
	all = append(all, DefaultAliases...)
	all = append(all, extra...)
	return NewAliasTable(all)
}

// Canonicalize maps name through the table. The first matching tier wins:
// exact match, then case-insensitive match, then case-insensitive prefix
// match (e.g. "Spot Gold - Cash" -> "XAUUSD"). Unmapped and empty names are
// returned unchanged.
func (t *AliasTable) Canonicalize(name string) string {
	if name == "" {
		return name
	}

	for _, a := range t.aliases {
		if a.Name == name {
			return a.Symbol
		}
	}

	folded := t.fold.String(name)
	for i, a := range t.aliases {
		if t.folded[i] == folded {
			return a.Symbol
		}
	}
	for i, a := range t.aliases {
		if strings.HasPrefix(folded, t.folded[i]) {
			return a.Symbol
		}
	}

	return name
}

// Validate rejects tables that are unusable or whose symbols would be
// re-mapped by another entry, which would make Canonicalize non-idempotent.
func (t *AliasTable) Validate() error {
	for _, a := range t.aliases {
		if a.Name == "" {
			return fmt.Errorf("alias for symbol %q has an empty name", a.Symbol)
		}
		if a.Symbol == "" {
			return fmt.Errorf("alias %q has an empty symbol", a.Name)
		}
		if got := t.Canonicalize(a.Symbol); got != a.Symbol {
			return fmt.Errorf("alias symbol %q is itself mapped to %q", a.Symbol, got)
		}
	}
	return nil
}
