package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/deligo/search-service/internal/domain"
	"github.com/deligo/search-service/internal/store"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	sellersCollection    = "sellerprofiles"

	defaultCurrency = "INR"
)

// Store reads product documents from the catalog MongoDB. Category and
// seller names are denormalized at read time with a per-iterator cache so a
// batch of products from one seller costs one lookup.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect establishes a MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	logger.Info("connected to mongodb", slog.String("database", dbName))
	return &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Healthy pings the primary.
func (s *Store) Healthy(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping: %w", err)
	}
	return nil
}

// StreamAll iterates every active product in batches.
func (s *Store) StreamAll(_ context.Context, batchSize int) store.BatchIterator {
	return s.newIterator(bson.M{"status": domain.StatusActive}, batchSize)
}

// StreamUpdatedSince iterates products whose updatedAt is at or after since.
// No status filter applies here: an update may be a deactivation, and the
// indexer needs to see it.
func (s *Store) StreamUpdatedSince(_ context.Context, since time.Time, batchSize int) store.BatchIterator {
	return s.newIterator(bson.M{"updatedAt": bson.M{"$gte": since}}, batchSize)
}

// GetByID fetches and enriches one product. Returns (nil, nil) when the id
// is malformed or the product does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.ProductDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var record productRecord
	err = s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find product %s: %w", id, err)
	}

	names := newNameCache(s)
	doc, err := s.enrich(ctx, record, names)
	if err != nil {
		return nil, fmt.Errorf("mongo: enrich product %s: %w", id, err)
	}
	return &doc, nil
}

func (s *Store) newIterator(filter bson.M, batchSize int) *batchIterator {
	if batchSize < 1 {
		batchSize = 100
	}
	return &batchIterator{
		store:     s,
		filter:    filter,
		batchSize: batchSize,
		names:     newNameCache(s),
	}
}

// batchIterator pages through the products collection with skip/limit,
// enriching each record. Records that fail to decode are logged and skipped
// rather than aborting the stream.
type batchIterator struct {
	store     *Store
	filter    bson.M
	batchSize int
	skip      int64
	names     *nameCache
	done      bool
}

func (it *batchIterator) Next(ctx context.Context) ([]domain.ProductDocument, error) {
	if it.done {
		return nil, nil
	}

	opts := options.Find().SetSkip(it.skip).SetLimit(int64(it.batchSize)).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := it.store.db.Collection(productsCollection).Find(ctx, it.filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find products: %w", err)
	}
	defer cursor.Close(ctx)

	docs := make([]domain.ProductDocument, 0, it.batchSize)
	fetched := 0
	for cursor.Next(ctx) {
		fetched++
		var record productRecord
		if err := cursor.Decode(&record); err != nil {
			it.store.logger.Error("skipping undecodable product record", slog.Any("error", err))
			continue
		}
		doc, err := it.store.enrich(ctx, record, it.names)
		if err != nil {
			it.store.logger.Error("skipping product with failed enrichment",
				slog.String("product_id", record.ID.Hex()),
				slog.Any("error", err),
			)
			continue
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: cursor: %w", err)
	}

	it.skip += int64(fetched)
	if fetched < it.batchSize {
		it.done = true
	}
	if fetched == 0 {
		return nil, nil
	}
	return docs, nil
}

// productRecord mirrors the catalog's stored shape (camelCase fields,
// ObjectID references, nested variants and seo blocks).
type productRecord struct {
	ID          primitive.ObjectID `bson:"_id"`
	SellerID    primitive.ObjectID `bson:"sellerId,omitempty"`
	SKU         string             `bson:"sku,omitempty"`
	Name        string             `bson:"name,omitempty"`
	Description string             `bson:"description,omitempty"`
	CategoryID  primitive.ObjectID `bson:"categoryId,omitempty"`
	Price       float64            `bson:"price,omitempty"`
	Currency    string             `bson:"currency,omitempty"`
	Discount    float64            `bson:"discount,omitempty"`
	Images      []string           `bson:"images,omitempty"`
	Stock       int                `bson:"stock,omitempty"`
	Status      string             `bson:"status,omitempty"`
	OrderCount  int                `bson:"orderCount,omitempty"`
	ViewCount   int                `bson:"viewCount,omitempty"`
	Variants    []variantRecord    `bson:"variants,omitempty"`
	SEO         seoRecord          `bson:"seo,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty"`
}

type variantRecord struct {
	Values []string `bson:"values,omitempty"`
}

type seoRecord struct {
	Tags []string `bson:"tags,omitempty"`
}

// enrich maps a raw record onto an engine-ready document, resolving category
// and seller names through the cache. A missing referent degrades to an
// empty name; a lookup transport error fails the record.
func (s *Store) enrich(ctx context.Context, record productRecord, names *nameCache) (domain.ProductDocument, error) {
	doc := domain.ProductDocument{
		ID:          record.ID.Hex(),
		SKU:         record.SKU,
		Name:        record.Name,
		Description: record.Description,
		Price:       record.Price,
		Currency:    record.Currency,
		Discount:    record.Discount,
		Images:      record.Images,
		Stock:       record.Stock,
		Status:      record.Status,
		OrderCount:  record.OrderCount,
		ViewCount:   record.ViewCount,
	}
	if doc.Currency == "" {
		doc.Currency = defaultCurrency
	}
	if doc.Status == "" {
		doc.Status = domain.StatusActive
	}
	if !record.SellerID.IsZero() {
		doc.SellerID = record.SellerID.Hex()
		name, err := names.seller(ctx, record.SellerID)
		if err != nil {
			return domain.ProductDocument{}, err
		}
		doc.SellerName = name
	}
	if !record.CategoryID.IsZero() {
		doc.CategoryID = record.CategoryID.Hex()
		name, err := names.category(ctx, record.CategoryID)
		if err != nil {
			return domain.ProductDocument{}, err
		}
		doc.CategoryName = name
	}
	if !record.CreatedAt.IsZero() {
		doc.CreatedAt = record.CreatedAt.Unix()
	}
	if !record.UpdatedAt.IsZero() {
		doc.UpdatedAt = record.UpdatedAt.Unix()
	}

	var variantValues []string
	for _, variant := range record.Variants {
		variantValues = append(variantValues, variant.Values...)
	}
	return domain.NewProductDocument(doc, variantValues, record.SEO.Tags), nil
}

// nameFinder resolves one display-name field from a referenced collection.
type nameFinder interface {
	findName(ctx context.Context, collection string, id primitive.ObjectID, field string) (string, error)
}

func (s *Store) findName(ctx context.Context, collection string, id primitive.ObjectID, field string) (string, error) {
	var result bson.M
	if err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&result); err != nil {
		return "", err
	}
	if name, ok := result[field].(string); ok {
		return name, nil
	}
	return "", nil
}

// nameCache memoizes category and seller name lookups for the lifetime of
// one stream.
type nameCache struct {
	finder     nameFinder
	categories map[primitive.ObjectID]string
	sellers    map[primitive.ObjectID]string
}

func newNameCache(finder nameFinder) *nameCache {
	return &nameCache{
		finder:     finder,
		categories: make(map[primitive.ObjectID]string),
		sellers:    make(map[primitive.ObjectID]string),
	}
}

func (c *nameCache) category(ctx context.Context, id primitive.ObjectID) (string, error) {
	if name, ok := c.categories[id]; ok {
		return name, nil
	}
	name, err := c.lookup(ctx, categoriesCollection, id, "name")
	if err != nil {
		return "", err
	}
	c.categories[id] = name
	return name, nil
}

func (c *nameCache) seller(ctx context.Context, id primitive.ObjectID) (string, error) {
	if name, ok := c.sellers[id]; ok {
		return name, nil
	}
	name, err := c.lookup(ctx, sellersCollection, id, "businessName")
	if err != nil {
		return "", err
	}
	c.sellers[id] = name
	return name, nil
}

// lookup resolves one display-name field. A missing referent is not an
// error: the name stays empty. Transport errors propagate so the caller can
// drop the record.
func (c *nameCache) lookup(ctx context.Context, collection string, id primitive.ObjectID, field string) (string, error) {
	name, err := c.finder.findName(ctx, collection, id, field)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("mongo: lookup %s %s: %w", collection, id.Hex(), err)
	}
	return name, nil
}
