package mongostore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

type categoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) repository.CategoryRepository {
	return &categoryRepository{collection: db.Collection(categoriesCollection)}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = models.NewID()
	}
	_, err := r.collection.InsertOne(ctx, category)
	return translate(err)
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return matched(r.collection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category))
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.collection.DeleteOne(ctx, bson.M{"_id": id}))
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := r.collection.FindOne(ctx, bson.M{"name": exactFold(strings.TrimSpace(name))}).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, translate(err)
	}
	out := []*models.Category{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *categoryRepository) SetRecipeCount(ctx context.Context, id string, count int64) error {
	return matched(r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"recipeCount": count, "updatedAt": time.Now().UTC()}},
	))
}
