// internal/employee/employee.go
//
// Employee is the single record type managed by roster. Records live in the
// remote store; this package only describes their shape and the fixed skill
// catalog the form draws from.

package employee

import (
	"sort"
	"strings"
)

// Tag is one skill label. Value is the identity key, Label is what we show.
type Tag struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Employee mirrors the JSON object stored in the employees collection.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Title  string `json:"title"`
	Age    int    `json:"age"`
	Phone  string `json:"phone"`
	Skills []Tag  `json:"skills"`
}

var catalog = []Tag{
	{Label: "nextjs", Value: "nextjs"},
	{Label: "React", Value: "react"},
	{Label: "Remix", Value: "remix"},
	{Label: "Vite", Value: "vite"},
	{Label: "Nuxt", Value: "nuxt"},
	{Label: "Vue", Value: "vue"},
	{Label: "Svelte", Value: "svelte"},
	{Label: "Angular", Value: "angular"},
	{Label: "Ember", Value: "ember"},
	{Label: "Gatsby", Value: "gatsby"},
	{Label: "Astro", Value: "astro"},
}

// Catalog returns the selectable skills in display order.
func Catalog() []Tag {
	out := make([]Tag, len(catalog))
	copy(out, catalog)
	return out
}

// LookupTag resolves a tag value against the catalog.
func LookupTag(value string) (Tag, bool) {
	key := strings.TrimSpace(value)
	for _, tag := range catalog {
		if tag.Value == key {
			return tag, true
		}
	}
	return Tag{}, false
}

// InCatalog reports whether tag's value belongs to the catalog.
func InCatalog(tag Tag) bool {
	_, ok := LookupTag(tag.Value)
	return ok
}

// CatalogIndex returns the display position of value, or -1.
func CatalogIndex(value string) int {
	for i, tag := range catalog {
		if tag.Value == value {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can hand records around without
// sharing the skills slice.
func (e Employee) Clone() Employee {
	out := e
	if e.Skills != nil {
		out.Skills = make([]Tag, len(e.Skills))
		copy(out.Skills, e.Skills)
	}
	return out
}

// SkillValues returns the sorted tag values, handy for set comparisons.
func (e Employee) SkillValues() []string {
	values := make([]string, 0, len(e.Skills))
	for _, tag := range e.Skills {
		values = append(values, tag.Value)
	}
	sort.Strings(values)
	return values
}

// SkillLabels joins the skill labels for display, or "-" when there are none.
func (e Employee) SkillLabels() string {
	if len(e.Skills) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(e.Skills))
	for _, tag := range e.Skills {
		labels = append(labels, tag.Label)
	}
	return strings.Join(labels, ", ")
}

// Equal compares every field, treating skills as a set keyed by value.
func (e Employee) Equal(other Employee) bool {
	if e.ID != other.ID || e.Name != other.Name || e.Email != other.Email ||
		e.Title != other.Title || e.Age != other.Age || e.Phone != other.Phone {
		return false
	}
	a, b := e.SkillValues(), other.SkillValues()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Find returns the roster entry with the given id.
func Find(roster []Employee, id string) (Employee, bool) {
	for _, e := range roster {
		if e.ID == id {
			return e, true
		}
	}
	return Employee{}, false
}
