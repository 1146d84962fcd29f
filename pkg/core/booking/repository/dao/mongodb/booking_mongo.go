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
	"staybook/pkg/core/booking/model"
	"staybook/pkg/core/booking/repository/dao"
)

const bookingCollection = "bookings"

type bookingDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Place     primitive.ObjectID `bson:"place"`
	User      primitive.ObjectID `bson:"user"`
	CheckIn   time.Time          `bson:"checkIn"`
	CheckOut  time.Time          `bson:"checkOut"`
	Name      string             `bson:"name"`
	Phone     string             `bson:"phone"`
	Price     float64            `bson:"price"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *bookingDocument) toModel() model.Booking {
	return model.Booking{
		ID:        d.ID.Hex(),
		Place:     d.Place.Hex(),
		User:      d.User.Hex(),
		CheckIn:   d.CheckIn.UTC(),
		CheckOut:  d.CheckOut.UTC(),
		Name:      d.Name,
		Phone:     d.Phone,
		Price:     d.Price,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type MongoBookingRepository struct {
	coll *mongo.Collection
}

var _ dao.BookingRepository = (*MongoBookingRepository)(nil)

func NewMongoBookingRepository(db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{coll: db.Collection(bookingCollection)}
}

// EnsureIndexes 按用户查询的索引
func (r *MongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetName("idx_user"),
	})
	if err != nil {
		return fmt.Errorf("%w: create bookings index", apperr.WrapMongoError(err, apperr.ErrDatabaseInternal))
	}
	return nil
}

// Create 只校验引用是合法的 ObjectID，不检查引用的文档是否存在
func (r *MongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	place, err := primitive.ObjectIDFromHex(booking.Place)
	if err != nil {
		return fmt.Errorf("%w: place is not a valid id", apperr.ErrInvalidInput)
	}
	user, err := primitive.ObjectIDFromHex(booking.User)
	if err != nil {
		return fmt.Errorf("%w: user is not a valid id", apperr.ErrInvalidInput)
	}

	doc := bookingDocument{
		ID:        primitive.NewObjectID(),
		Place:     place,
		User:      user,
		CheckIn:   booking.CheckIn,
		CheckOut:  booking.CheckOut,
		Name:      booking.Name,
		Phone:     booking.Phone,
		Price:     booking.Price,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return apperr.WrapMongoError(err, apperr.ErrDatabaseInternal)
	}
	booking.ID = doc.ID.Hex()
	booking.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []model.Booking{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"user": user}, options.Find().SetSort(bson.D{{Key: "checkIn", Value: 1}}))
	if err != nil {
		return nil, apperr.WrapMongoError(err, apperr.ErrDatabaseInternal)
	}

	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.WrapMongoError(err, apperr.ErrDatabaseInternal)
	}

	bookings := make([]model.Booking, 0, len(docs))
	for i := range docs {
		bookings = append(bookings, docs[i].toModel())
	}
	return bookings, nil
}
