package mongo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deligo/search-service/internal/domain"
)

// fakeFinder serves name lookups from a map; unknown ids report a missing
// referent and an optional failure error simulates a broken connection.
type fakeFinder struct {
	names map[primitive.ObjectID]string
	fail  error
	calls int
}

func (f *fakeFinder) findName(_ context.Context, _ string, id primitive.ObjectID, _ string) (string, error) {
	f.calls++
	if f.fail != nil {
		return "", f.fail
	}
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	return "", mongo.ErrNoDocuments
}

func testStore() *Store {
	return &Store{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testRecord(categoryID, sellerID primitive.ObjectID) productRecord {
	return productRecord{
		ID:         primitive.NewObjectID(),
		SellerID:   sellerID,
		CategoryID: categoryID,
		Name:       "Trail Shoes",
		Price:      90,
		Status:     domain.StatusActive,
		UpdatedAt:  time.Now(),
	}
}

func TestEnrich_ResolvesNames(t *testing.T) {
	categoryID := primitive.NewObjectID()
	sellerID := primitive.NewObjectID()
	finder := &fakeFinder{names: map[primitive.ObjectID]string{
		categoryID: "Footwear",
		sellerID:   "Acme Sports",
	}}

	doc, err := testStore().enrich(context.Background(), testRecord(categoryID, sellerID), newNameCache(finder))
	require.NoError(t, err)
	assert.Equal(t, "Footwear", doc.CategoryName)
	assert.Equal(t, "Acme Sports", doc.SellerName)
}

func TestEnrich_MissingReferentKeepsRecord(t *testing.T) {
	finder := &fakeFinder{}

	doc, err := testStore().enrich(context.Background(), testRecord(primitive.NewObjectID(), primitive.NewObjectID()), newNameCache(finder))
	require.NoError(t, err)
	assert.Equal(t, "Trail Shoes", doc.Name)
	assert.Empty(t, doc.CategoryName)
	assert.Empty(t, doc.SellerName)
}

func TestEnrich_TransportErrorFailsRecord(t *testing.T) {
	finder := &fakeFinder{fail: errors.New("connection reset")}

	_, err := testStore().enrich(context.Background(), testRecord(primitive.NewObjectID(), primitive.NewObjectID()), newNameCache(finder))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestEnrich_AppliesDefaults(t *testing.T) {
	record := productRecord{ID: primitive.NewObjectID(), Name: "Bare"}

	doc, err := testStore().enrich(context.Background(), record, newNameCache(&fakeFinder{}))
	require.NoError(t, err)
	assert.Equal(t, defaultCurrency, doc.Currency)
	assert.Equal(t, domain.StatusActive, doc.Status)
}

func TestNameCache_MemoizesLookups(t *testing.T) {
	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	finder := &fakeFinder{names: map[primitive.ObjectID]string{categoryID: "Footwear"}}
	cache := newNameCache(finder)

	for i := 0; i < 3; i++ {
		name, err := cache.category(ctx, categoryID)
		require.NoError(t, err)
		assert.Equal(t, "Footwear", name)
	}
	assert.Equal(t, 1, finder.calls)
}

func TestNameCache_MemoizesMissingReferent(t *testing.T) {
	ctx := context.Background()
	finder := &fakeFinder{}
	cache := newNameCache(finder)

	sellerID := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		name, err := cache.seller(ctx, sellerID)
		require.NoError(t, err)
		assert.Empty(t, name)
	}
	assert.Equal(t, 1, finder.calls)
}

func TestNameCache_DoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	finder := &fakeFinder{fail: errors.New("timeout")}
	cache := newNameCache(finder)

	id := primitive.NewObjectID()
	_, err := cache.category(ctx, id)
	require.Error(t, err)

	// The connection recovers; the next lookup must retry.
	finder.fail = nil
	finder.names = map[primitive.ObjectID]string{id: "Footwear"}
	name, err := cache.category(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Footwear", name)
}
