package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

// ConnectMongoDB opens and pings a MongoDB database.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoGateway struct {
	products *mongo.Collection
	accounts *mongo.Collection
}

// NewMongoGateway builds a Gateway over the Products and Users collections.
func NewMongoGateway(db *mongo.Database) Gateway {
	return &mongoGateway{
		products: db.Collection("Products"),
		accounts: db.Collection("Users"),
	}
}

// productDoc is the persisted shape; the ObjectID is exposed to the rest of
// the system as its hex string.
type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Stock       int                `bson:"stock"`
}

func (d *productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
	}
}

func parseProductID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidProductID, id)
	}
	return oid, nil
}

func (g *mongoGateway) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseProductID(id)
	if err != nil {
		return nil, err
	}

	var doc productDoc
	err = g.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return doc.toDomain(), nil
}

func (g *mongoGateway) SearchProducts(ctx context.Context, f Filter) ([]domain.Product, error) {
	if f.ID != "" {
		p, err := g.FindProduct(ctx, f.ID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return []domain.Product{}, nil
			}
			return nil, err
		}
		return []domain.Product{*p}, nil
	}

	filter := bson.M{}
	switch {
	case f.Name != "":
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	case f.Category != "":
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cursor, err := g.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Product
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("product cursor failed: %w", err)
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

func (g *mongoGateway) InsertProduct(ctx context.Context, p *domain.Product) (string, error) {
	doc := productDoc{
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
	res, err := g.products.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert product: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	p.ID = oid.Hex()
	return p.ID, nil
}

func (g *mongoGateway) UpdateProduct(ctx context.Context, id string, u ProductUpdate) error {
	oid, err := parseProductID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Stock != nil {
		set["stock"] = *u.Stock
	}

	res, err := g.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (g *mongoGateway) DeleteProduct(ctx context.Context, id string) error {
	oid, err := parseProductID(id)
	if err != nil {
		return err
	}

	res, err := g.products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock is the conditional update at the heart of checkout: the
// stock comparison and the subtraction happen in one FindOneAndUpdate, so
// two concurrent checkouts can never both decrement past zero.
func (g *mongoGateway) DecrementStock(ctx context.Context, id string, qty int) error {
	oid, err := parseProductID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "stock": bson.M{"$gte": qty}}
	update := bson.M{"$inc": bson.M{"stock": -qty}}

	err = g.products.FindOneAndUpdate(ctx, filter, update).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	// No match: either the product is gone or its stock is short.
	count, countErr := g.products.CountDocuments(ctx, bson.M{"_id": oid})
	if countErr != nil {
		return fmt.Errorf("failed to check product existence: %w", countErr)
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return ErrInsufficientStock
}

func (g *mongoGateway) FindAccountByHandle(ctx context.Context, handle string) (*domain.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": handle},
		bson.M{"username": handle},
	}}

	var a domain.Account
	err := g.accounts.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &a, nil
}

func (g *mongoGateway) FindAccountByLogin(ctx context.Context, kind HandleKind, handle, password string) (*domain.Account, error) {
	filter := bson.M{string(kind): handle, "password": password}

	var a domain.Account
	err := g.accounts.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by credentials: %w", err)
	}
	return &a, nil
}

func (g *mongoGateway) AccountExists(ctx context.Context, email, ssn string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"ssn": ssn},
	}}

	count, err := g.accounts.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check account conflict: %w", err)
	}
	return count > 0, nil
}

func (g *mongoGateway) InsertAccount(ctx context.Context, a *domain.Account) error {
	if _, err := g.accounts.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// AppendOrder pushes a receipt onto the account's order history. Commit
// order is preserved by the append.
func (g *mongoGateway) AppendOrder(ctx context.Context, handle string, r domain.Receipt) error {
	filter := bson.M{"email": handle}
	update := bson.M{"$push": bson.M{"orders": r}}

	res, err := g.accounts.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (g *mongoGateway) DeleteAccount(ctx context.Context, handle string) error {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": handle},
		bson.M{"username": handle},
	}}

	res, err := g.accounts.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes sets up the uniqueness constraints signup relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "ssn", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	if _, err := db.Collection("Users").Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
