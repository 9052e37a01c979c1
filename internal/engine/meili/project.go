package meili

import (
	"sort"
	"strings"

	"github.com/deligo/search-service/internal/domain"
)

// facetDisplayNames maps facet field names to human-readable labels. Fields
// outside this table are titleized from their raw name.
var facetDisplayNames = map[string]string{
	"category_name": "Category",
	"seller_name":   "Seller",
	"status":        "Status",
}

// projectHit maps one raw engine hit onto a domain result. Missing optional
// fields default (empty description, zero price, empty image list); the
// in-stock flag is derived from stock; highlight markup is carried through
// untouched under _formatted.
func projectHit(hit map[string]any) domain.ProductResult {
	stock := hitInt(hit, "stock")

	result := domain.ProductResult{
		ID:              hitString(hit, "id"),
		Name:            hitString(hit, "name"),
		Description:     hitString(hit, "description"),
		Price:           hitFloat(hit, "price"),
		Currency:        hitString(hit, "currency"),
		Discount:        hitFloat(hit, "discount"),
		DiscountedPrice: hitFloat(hit, "discounted_price"),
		Images:          hitStrings(hit, "images"),
		CategoryID:      hitString(hit, "category_id"),
		CategoryName:    hitString(hit, "category_name"),
		SellerID:        hitString(hit, "seller_id"),
		SellerName:      hitString(hit, "seller_name"),
		Stock:           stock,
		InStock:         stock > 0,
		ReviewCount:     hitInt(hit, "review_count"),
		OrderCount:      hitInt(hit, "order_count"),
		Status:          hitString(hit, "status"),
		SKU:             hitString(hit, "sku"),
	}
	if result.Status == "" {
		result.Status = domain.StatusActive
	}
	if v, ok := hit["rating"].(float64); ok {
		result.Rating = &v
	}
	if formatted, ok := hit["_formatted"].(map[string]any); ok {
		result.Formatted = formatted
	}
	return result
}

func projectHits(hits []any) []domain.ProductResult {
	products := make([]domain.ProductResult, 0, len(hits))
	for _, raw := range hits {
		hit, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		products = append(products, projectHit(hit))
	}
	return products
}

// projectFacets reshapes the engine facet distribution into groups with
// values sorted by descending count (value name breaks ties) and a display
// name per field.
func projectFacets(distribution map[string]any) []domain.FacetGroup {
	fields := make([]string, 0, len(distribution))
	for field := range distribution {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	groups := make([]domain.FacetGroup, 0, len(fields))
	for _, field := range fields {
		counts, ok := distribution[field].(map[string]any)
		if !ok {
			continue
		}

		values := make([]domain.FacetValue, 0, len(counts))
		for value, count := range counts {
			n, ok := count.(float64)
			if !ok {
				continue
			}
			values = append(values, domain.FacetValue{Value: value, Count: int(n)})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})

		groups = append(groups, domain.FacetGroup{
			Name:        field,
			DisplayName: facetDisplayName(field),
			Values:      values,
		})
	}
	return groups
}

func facetDisplayName(field string) string {
	if name, ok := facetDisplayNames[field]; ok {
		return name
	}
	return titleize(field)
}

// titleize turns a raw field name like "brand_name" into "Brand Name".
func titleize(field string) string {
	words := strings.Split(strings.ReplaceAll(field, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// --- typed accessors over decoded JSON hits ---

func hitString(hit map[string]any, key string) string {
	if v, ok := hit[key].(string); ok {
		return v
	}
	return ""
}

func hitFloat(hit map[string]any, key string) float64 {
	if v, ok := hit[key].(float64); ok {
		return v
	}
	return 0
}

func hitInt(hit map[string]any, key string) int {
	if v, ok := hit[key].(float64); ok {
		return int(v)
	}
	return 0
}

func hitStrings(hit map[string]any, key string) []string {
	raw, ok := hit[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
