package domain

import (
	"strings"
	"time"
)

// Product status values as stored in the document store and the search index.
const (
	StatusActive  = "active"
	StatusDraft   = "draft"
	StatusBanned  = "banned"
	StatusDeleted = "deleted"
)

// ProductDocument is the flattened, engine-ready representation of a catalog
// item. It is built once at sync time (category and seller names already
// denormalized, auxiliary text joined into flat strings) and handed to the
// search engine as-is. The ID is the stable idempotency key for upserts.
type ProductDocument struct {
	ID              string   `json:"id" bson:"_id"`
	SellerID        string   `json:"seller_id"`
	SKU             string   `json:"sku"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	CategoryID      string   `json:"category_id"`
	CategoryName    string   `json:"category_name"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	Discount        float64  `json:"discount"`
	DiscountedPrice float64  `json:"discounted_price"`
	Images          []string `json:"images"`
	Stock           int      `json:"stock"`
	InStock         bool     `json:"in_stock"`
	Status          string   `json:"status"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewCount     int      `json:"review_count"`
	OrderCount      int      `json:"order_count"`
	ViewCount       int      `json:"view_count"`
	SellerName      string   `json:"seller_name"`
	VariantValues   string   `json:"variant_values"`
	SEOTags         string   `json:"seo_tags"`
	CreatedAt       int64    `json:"created_at"`
	UpdatedAt       int64    `json:"updated_at"`
}

// NewProductDocument fills the derived fields of a document: the discounted
// price, the in-stock flag, joined auxiliary text, and timestamps defaulting
// to now. Callers set the scalar fields and pass the raw slices here.
func NewProductDocument(doc ProductDocument, variantValues, seoTags []string) ProductDocument {
	doc.DiscountedPrice = doc.Price
	if doc.Discount > 0 {
		doc.DiscountedPrice = doc.Price * (1 - doc.Discount/100)
	}
	doc.InStock = doc.Stock > 0
	doc.VariantValues = strings.Join(variantValues, " ")
	doc.SEOTags = strings.Join(seoTags, " ")
	if doc.Images == nil {
		doc.Images = []string{}
	}
	now := time.Now().UTC().Unix()
	if doc.CreatedAt == 0 {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt == 0 {
		doc.UpdatedAt = now
	}
	return doc
}
