package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/place/model"
	"staybook/pkg/core/place/repository/dao"
)

const placeCollection = "places"

type placeDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       primitive.ObjectID `bson:"owner"`
	Title       string             `bson:"title"`
	Address     string             `bson:"address"`
	Photos      []string           `bson:"photos"`
	Description string             `bson:"description"`
	Perks       []string           `bson:"perks"`
	MaxGuests   int                `bson:"maxGuests"`
	Price       float64            `bson:"price"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *placeDocument) toModel() model.Place {
	return model.Place{
		ID:          d.ID.Hex(),
		Owner:       d.Owner.Hex(),
		Title:       d.Title,
		Address:     d.Address,
		Photos:      nonNil(d.Photos),
		Description: d.Description,
		Perks:       nonNil(d.Perks),
		MaxGuests:   d.MaxGuests,
		Price:       d.Price,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoPlaceRepository struct {
	coll *mongo.Collection
}

var _ dao.PlaceRepository = (*MongoPlaceRepository)(nil)

func NewMongoPlaceRepository(db *mongo.Database) *MongoPlaceRepository {
	return &MongoPlaceRepository{coll: db.Collection(placeCollection)}
}

// EnsureIndexes 按所有者查询的索引
func (r *MongoPlaceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}},
		Options: options.Index().SetName("idx_owner"),
	})
	if err != nil {
		return fmt.Errorf("%w: create places index", apperr.WrapMongoError(err, apperr.ErrPlaceNotFound))
	}
	return nil
}

func (r *MongoPlaceRepository) Create(ctx context.Context, place *model.Place) error {
	owner, err := primitive.ObjectIDFromHex(place.Owner)
	if err != nil {
		return fmt.Errorf("%w: owner is not a valid id", apperr.ErrInvalidInput)
	}

	now := time.Now().UTC()
	doc := placeDocument{
		ID:          primitive.NewObjectID(),
		Owner:       owner,
		Title:       place.Title,
		Address:     place.Address,
		Photos:      place.Photos,
		Description: place.Description,
		Perks:       place.Perks,
		MaxGuests:   place.MaxGuests,
		Price:       place.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return apperr.WrapMongoError(err, apperr.ErrPlaceNotFound)
	}
	place.ID = doc.ID.Hex()
	place.CreatedAt = now
	place.UpdatedAt = now
	return nil
}

func (r *MongoPlaceRepository) Update(ctx context.Context, place *model.Place) error {
	oid, err := primitive.ObjectIDFromHex(place.ID)
	if err != nil {
		return apperr.ErrPlaceNotFound
	}

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":       place.Title,
		"address":     place.Address,
		"photos":      place.Photos,
		"description": place.Description,
		"perks":       place.Perks,
		"maxGuests":   place.MaxGuests,
		"price":       place.Price,
		"updatedAt":   now,
	}}
	result, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return apperr.WrapMongoError(err, apperr.ErrPlaceNotFound)
	}
	if result.MatchedCount == 0 {
		return apperr.ErrPlaceNotFound
	}
	place.UpdatedAt = now
	return nil
}

func (r *MongoPlaceRepository) FindByID(ctx context.Context, id string) (*model.Place, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrPlaceNotFound
	}

	var doc placeDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, apperr.WrapMongoError(err, apperr.ErrPlaceNotFound)
	}
	place := doc.toModel()
	return &place, nil
}

func (r *MongoPlaceRepository) FindAll(ctx context.Context) ([]model.Place, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPlaceRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.Place, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []model.Place{}, nil
	}
	return r.find(ctx, bson.M{"owner": owner})
}

func (r *MongoPlaceRepository) find(ctx context.Context, filter bson.M) ([]model.Place, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, apperr.WrapMongoError(err, apperr.ErrPlaceNotFound)
	}

	var docs []placeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.WrapMongoError(err, apperr.ErrPlaceNotFound)
	}

	places := make([]model.Place, 0, len(docs))
	for i := range docs {
		places = append(places, docs[i].toModel())
	}
	return places, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
