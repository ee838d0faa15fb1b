package menu

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Normalize converts decoded JSON (as produced by encoding/json into
// interface{}) into categories. It never fails: entries that are not objects
// are skipped and each field falls back to its zero value on its own.
func Normalize(raw interface{}) []Category {
	list, ok := raw.([]interface{})
	if !ok {
		return []Category{}
	}

	cats := make([]Category, 0, len(list))
	for _, entry := range list {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		cats = append(cats, Category{
			ID:       firstString(fields, "_id", "id"),
			Name:     strings.TrimSpace(cast.ToString(fields["name"])),
			Order:    toInt(fields["order"]),
			Products: normalizeProducts(fields["products"]),
		})
	}
	return cats
}

func normalizeProducts(raw interface{}) []Product {
	list, ok := raw.([]interface{})
	if !ok {
		return []Product{}
	}

	products := make([]Product, 0, len(list))
	for i, entry := range list {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id := firstString(fields, "id", "_id")
		if id == "" {
			id = strconv.Itoa(i)
		}
		products = append(products, Product{
			ID:          id,
			Name:        cast.ToString(fields["name"]),
			Price:       ToPrice(fields["price"]),
			Image:       cast.ToString(fields["image"]),
			Description: cast.ToString(fields["description"]),
		})
	}
	return products
}

// ToPrice coerces a JSON number or numeric string, returning 0 otherwise.
func ToPrice(v interface{}) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toInt reads strings as base-10 so "010" is 10, not octal.
func toInt(v interface{}) int {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

func firstString(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(cast.ToString(fields[k])); s != "" {
			return s
		}
	}
	return ""
}
