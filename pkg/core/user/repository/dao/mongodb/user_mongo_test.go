package mongodb

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/test/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/user/model"
)

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &model.User{Name: "Alice", Email: "a@x.com", PasswordHash: "hash"}
		assert.Nil(mt, repo.Create(ctx, user))
		_, err := primitive.ObjectIDFromHex(user.ID)
		assert.Nil(mt, err)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: staybook.users index: uniq_email",
		}))

		err := repo.Create(ctx, &model.User{Name: "Alice", Email: "a@x.com", PasswordHash: "hash"})
		assert.Assert(mt, apperr.Is(err, apperr.ErrDuplicateEntry), err)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + userCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
		}))

		user, err := repo.FindByEmail(ctx, "a@x.com")
		assert.Nil(mt, err)
		assert.DeepEqual(mt, oid.Hex(), user.ID)
		assert.DeepEqual(mt, "hash", user.PasswordHash)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + userCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByEmail(ctx, "nobody@x.com")
		assert.Assert(mt, apperr.Is(err, apperr.ErrUserNotFound), err)

		// 非法 id 不访问数据库
		_, err = repo.FindByID(ctx, "not-hex")
		assert.Assert(mt, apperr.Is(err, apperr.ErrUserNotFound), err)
	})
}
