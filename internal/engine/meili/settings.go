package meili

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"
)

// DefaultIndexName is the default Meilisearch index used for product documents.
const DefaultIndexName = "products"

// TypoTolerance bounds how aggressively the engine matches misspelled words.
type TypoTolerance struct {
	Enabled          bool
	MinWordSizeOne   int64
	MinWordSizeTwo   int64
	ExemptAttributes []string
}

// IndexSettings is the strongly-typed engine configuration: which attributes
// are searchable, filterable and sortable, the ranking tie-break rules, the
// stop-word set, the bidirectional synonym map, typo tolerance, and result
// caps. It replaces loose map-shaped settings and is validated at startup.
type IndexSettings struct {
	SearchableAttributes []string
	FilterableAttributes []string
	SortableAttributes   []string
	RankingRules         []string
	StopWords            []string
	Synonyms             map[string][]string
	TypoTolerance        TypoTolerance
	MaxValuesPerFacet    int64
	MaxTotalHits         int64
}

// Validate checks the settings invariants before the engine is configured.
func (s IndexSettings) Validate() error {
	if len(s.SearchableAttributes) == 0 {
		return fmt.Errorf("index settings: at least one searchable attribute required")
	}
	if len(s.RankingRules) == 0 {
		return fmt.Errorf("index settings: ranking rules must not be empty")
	}
	if s.TypoTolerance.MinWordSizeOne > s.TypoTolerance.MinWordSizeTwo {
		return fmt.Errorf("index settings: one-typo word size %d exceeds two-typo word size %d",
			s.TypoTolerance.MinWordSizeOne, s.TypoTolerance.MinWordSizeTwo)
	}
	if s.MaxValuesPerFacet < 1 {
		return fmt.Errorf("index settings: max values per facet must be positive")
	}
	if s.MaxTotalHits < 1 {
		return fmt.Errorf("index settings: max total hits must be positive")
	}
	return nil
}

func (s IndexSettings) toMeilisearch() *meilisearch.Settings {
	return &meilisearch.Settings{
		SearchableAttributes: s.SearchableAttributes,
		FilterableAttributes: s.FilterableAttributes,
		SortableAttributes:   s.SortableAttributes,
		RankingRules:         s.RankingRules,
		StopWords:            s.StopWords,
		Synonyms:             s.Synonyms,
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: s.TypoTolerance.Enabled,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  s.TypoTolerance.MinWordSizeOne,
				TwoTypos: s.TypoTolerance.MinWordSizeTwo,
			},
			DisableOnAttributes: s.TypoTolerance.ExemptAttributes,
		},
		Faceting: &meilisearch.Faceting{
			MaxValuesPerFacet: s.MaxValuesPerFacet,
		},
		Pagination: &meilisearch.Pagination{
			MaxTotalHits: s.MaxTotalHits,
		},
	}
}

// DefaultSettings returns the production index configuration. Ranking places
// textual relevance first and uses popularity counters (orders, then views)
// as final tie-breaks. SKUs are exempt from typo tolerance so near-miss codes
// never match.
func DefaultSettings() IndexSettings {
	return IndexSettings{
		SearchableAttributes: []string{
			"name",
			"description",
			"category_name",
			"sku",
			"seo_tags",
			"seller_name",
			"variant_values",
		},
		FilterableAttributes: []string{
			"category_id",
			"category_name",
			"seller_id",
			"status",
			"price",
			"stock",
			"discount",
			"rating",
			"created_at",
		},
		SortableAttributes: []string{
			"price",
			"created_at",
			"order_count",
			"view_count",
			"rating",
			"discount",
			"stock",
		},
		RankingRules: []string{
			"words",
			"typo",
			"proximity",
			"attribute",
			"sort",
			"exactness",
			"order_count:desc",
			"view_count:desc",
		},
		StopWords: []string{
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
			"of", "with", "by", "from", "is", "are", "was", "were", "be", "been",
			"being", "have", "has", "had", "do", "does", "did", "will", "would",
			"could", "should", "may", "might", "must", "shall", "can", "need",
			"this", "that", "these", "those", "it", "its",
		},
		Synonyms: map[string][]string{
			"phone":     {"mobile", "smartphone", "cellphone", "handset"},
			"laptop":    {"notebook", "computer", "pc", "macbook"},
			"tv":        {"television", "smart tv", "led tv", "oled tv"},
			"headphone": {"headphones", "earphone", "earphones", "earbuds", "headset"},
			"shirt":     {"tshirt", "t-shirt", "tee", "top"},
			"pants":     {"trousers", "jeans", "bottoms"},
			"shoes":     {"footwear", "sneakers", "boots", "sandals"},
			"watch":     {"smartwatch", "wristwatch", "timepiece"},
			"bag":       {"backpack", "handbag", "purse", "satchel"},
			"camera":    {"dslr", "mirrorless", "webcam"},
			"cheap":     {"affordable", "budget", "low price", "discount"},
			"expensive": {"premium", "luxury", "high-end"},
			"good":      {"great", "excellent", "best", "top"},
			"fast":      {"quick", "speedy", "rapid"},
			"new":       {"latest", "newest", "recent", "fresh"},
		},
		TypoTolerance: TypoTolerance{
			Enabled:          true,
			MinWordSizeOne:   5,
			MinWordSizeTwo:   9,
			ExemptAttributes: []string{"sku"},
		},
		MaxValuesPerFacet: 100,
		MaxTotalHits:      10000,
	}
}
