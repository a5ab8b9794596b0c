package translate

import (
	"fmt"

	"github.com/Gorgorito12/WoL-traduccion-IA/android"
)

// Unit is one translatable atom: the value of a <string>, one <item> of a
// <string-array>, or one quantity form of a <plurals>. A chunk never splits
// a unit's text across requests.
type Unit struct {
	// Entry is the owning resource, mutated in place when the translation
	// is applied.
	Entry *android.Entry
	// ItemIdx is the index into Entry.Items for string-array units.
	ItemIdx int
	// Quantity is the plural keyword for plurals units.
	Quantity string
	// Source is the original text.
	Source string
}

// Describe names the unit in warnings: "greeting", "planets[2]", "songs#one".
func (u *Unit) Describe() string {
	switch u.Entry.Kind {
	case android.KindStringArray:
		return fmt.Sprintf("%s[%d]", u.Entry.Name, u.ItemIdx)
	case android.KindPlurals:
		return u.Entry.Name + "#" + u.Quantity
	}
	return u.Entry.Name
}

// apply writes translated text back onto the owning entry.
func (u *Unit) apply(text string) {
	switch u.Entry.Kind {
	case android.KindString:
		u.Entry.Value = text
	case android.KindStringArray:
		if u.ItemIdx < len(u.Entry.Items) {
			u.Entry.Items[u.ItemIdx] = text
		}
	case android.KindPlurals:
		u.Entry.Forms[u.Quantity] = text
	}
}

// BuildUnits expands the document's translatable entries into flat units in
// document order.
func BuildUnits(doc *android.Document) []*Unit {
	var units []*Unit
	for _, e := range doc.TranslatableEntries() {
		switch e.Kind {
		case android.KindString:
			units = append(units, &Unit{Entry: e, Source: e.Value})
		case android.KindStringArray:
			for i, item := range e.Items {
				units = append(units, &Unit{Entry: e, ItemIdx: i, Source: item})
			}
		case android.KindPlurals:
			for _, q := range e.Quantities {
				units = append(units, &Unit{Entry: e, Quantity: q, Source: e.Forms[q]})
			}
		}
	}
	return units
}

// BuildChunks greedily packs texts into batches whose combined length,
// including sepLen bytes between adjacent items, stays within maxChars.
// A text longer than maxChars gets a chunk of its own; a unit is never
// split across requests. The packing is deterministic:
// the same texts and limit always produce the same boundaries.
func BuildChunks(texts []string, maxChars, sepLen int) [][]string {
	var chunks [][]string
	var batch []string
	length := 0

	for _, text := range texts {
		n := len(text)

		if len(batch) > 0 && length+sepLen+n > maxChars {
			chunks = append(chunks, batch)
			batch = nil
			length = 0
		}

		if n > maxChars {
			chunks = append(chunks, []string{text})
			batch = nil
			length = 0
			continue
		}

		if len(batch) > 0 {
			length += sepLen
		}
		batch = append(batch, text)
		length += n
	}

	if len(batch) > 0 {
		chunks = append(chunks, batch)
	}
	return chunks
}
