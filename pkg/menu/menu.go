// Package menu turns the nested category list into the flat, grouped view
// used for rendering and cart indexing. Everything here is pure.
package menu

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLanguage tailors name comparison for the menu's script.
var DefaultLanguage = language.Arabic

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

type Category struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Order    int       `json:"order"`
	Products []Product `json:"products"`
}

// Item is a product in the flat list. Index is its position in that list
// and is the key the cart uses.
type Item struct {
	Product
	Index        int    `json:"index"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

// Section is a run of items sharing a category, in display order.
type Section struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Items      []Item `json:"items"`
}

// Menu is the complete view-model.
type Menu struct {
	Categories []Category `json:"categories"`
	Items      []Item     `json:"items"`
	Sections   []Section  `json:"sections"`
}

// Ordering sorts categories by (order, name) with a locale-aware name
// comparison. Equal keys keep their input order.
type Ordering struct {
	tag language.Tag
}

func NewOrdering(tag language.Tag) Ordering {
	return Ordering{tag: tag}
}

// Sort returns a sorted copy of cats.
func (o Ordering) Sort(cats []Category) []Category {
	out := make([]Category, len(cats))
	copy(out, cats)
	SortByKey(o, out, func(c Category) (int, string) { return c.Order, c.Name })
	return out
}

// SortByKey stable-sorts s in place by the (order, name) pair key returns,
// so other category shapes share the same ordering rules.
func SortByKey[T any](o Ordering, s []T, key func(T) (int, string)) {
	// collators keep internal buffers, so each sort gets its own
	col := collate.New(o.tag)
	sort.SliceStable(s, func(i, j int) bool {
		oi, ni := key(s[i])
		oj, nj := key(s[j])
		if oi != oj {
			return oi < oj
		}
		return col.CompareString(ni, nj) < 0
	})
}

// SortCategories sorts with the default language.
func SortCategories(cats []Category) []Category {
	return NewOrdering(DefaultLanguage).Sort(cats)
}

// Flatten lists every product in category display order, then insertion
// order within each category.
func Flatten(cats []Category) []Item {
	sorted := SortCategories(cats)
	items := []Item{}
	for _, c := range sorted {
		for _, p := range c.Products {
			items = append(items, Item{
				Product:      p,
				Index:        len(items),
				CategoryID:   c.ID,
				CategoryName: c.Name,
			})
		}
	}
	return items
}

// Group buckets items by category, keeping the order in which each category
// first appears.
func Group(items []Item) []Section {
	sections := []Section{}
	pos := make(map[string]int)
	for _, item := range items {
		key := item.CategoryID + "\x00" + item.CategoryName
		i, ok := pos[key]
		if !ok {
			i = len(sections)
			pos[key] = i
			sections = append(sections, Section{CategoryID: item.CategoryID, Name: item.CategoryName})
		}
		sections[i].Items = append(sections[i].Items, item)
	}
	return sections
}

// Build runs the whole transform.
func Build(cats []Category) Menu {
	items := Flatten(cats)
	return Menu{
		Categories: SortCategories(cats),
		Items:      items,
		Sections:   Group(items),
	}
}
