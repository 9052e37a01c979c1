package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProductDocument_DerivedFields(t *testing.T) {
	doc := NewProductDocument(ProductDocument{
		ID:       "prod-1",
		Name:     "Trail Shoes",
		Price:    100,
		Discount: 25,
		Stock:    4,
	}, []string{"red", "42"}, []string{"outdoor", "running"})

	assert.InDelta(t, 75.0, doc.DiscountedPrice, 0.001)
	assert.True(t, doc.InStock)
	assert.Equal(t, "red 42", doc.VariantValues)
	assert.Equal(t, "outdoor running", doc.SEOTags)
	assert.NotNil(t, doc.Images)
	assert.WithinDuration(t, time.Now().UTC(), time.Unix(doc.CreatedAt, 0), 2*time.Second)
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
}

func TestNewProductDocument_NoDiscount(t *testing.T) {
	doc := NewProductDocument(ProductDocument{ID: "prod-2", Price: 49.99}, nil, nil)

	assert.InDelta(t, 49.99, doc.DiscountedPrice, 0.001)
	assert.False(t, doc.InStock)
	assert.Empty(t, doc.VariantValues)
}

func TestNewProductDocument_KeepsExplicitTimestamps(t *testing.T) {
	doc := NewProductDocument(ProductDocument{
		ID:        "prod-3",
		CreatedAt: 1700000000,
		UpdatedAt: 1700000500,
	}, nil, nil)

	assert.Equal(t, int64(1700000000), doc.CreatedAt)
	assert.Equal(t, int64(1700000500), doc.UpdatedAt)
}
