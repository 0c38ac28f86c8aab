package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

type recipeRepository struct {
	collection *mongo.Collection
}

func NewRecipeRepository(db *mongo.Database) repository.RecipeRepository {
	return &recipeRepository{collection: db.Collection(recipesCollection)}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = models.NewID()
	}
	_, err := r.collection.InsertOne(ctx, recipe)
	return translate(err)
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	return matched(r.collection.ReplaceOne(ctx, bson.M{"_id": recipe.ID}, recipe))
}

func (r *recipeRepository) Delete(ctx context.Context, id string) error {
	return deleted(r.collection.DeleteOne(ctx, bson.M{"_id": id}))
}

func (r *recipeRepository) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	var rec models.Recipe
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *recipeRepository) Find(ctx context.Context, filter repository.RecipeFilter) ([]*models.Recipe, int64, error) {
	query := buildQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translate(err)
	}

	sorts := filter.Sort
	if len(sorts) == 0 {
		sorts = []repository.SortKey{{Field: repository.SortCreatedAt, Desc: true}}
	}
	order := bson.D{}
	for _, k := range sorts {
		dir := 1
		if k.Desc {
			dir = -1
		}
		order = append(order, bson.E{Key: k.Field, Value: dir})
	}
	order = append(order, bson.E{Key: "_id", Value: 1})

	opts := options.Find().
		SetSort(order).
		SetProjection(bson.M{"ratings": 0}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, translate(err)
	}
	recipes := []*models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, 0, translate(err)
	}
	return recipes, total, nil
}

func buildQuery(f repository.RecipeFilter) bson.M {
	q := bson.M{}
	if f.PublishedOnly {
		q["isPublished"] = true
	}
	if f.FeaturedOnly {
		q["isFeatured"] = true
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Author != "" {
		q["author"] = f.Author
	}
	if f.Difficulty != "" {
		q["difficulty"] = f.Difficulty
	}
	if f.MaxTime > 0 {
		q["totalTime"] = bson.M{"$lte": f.MaxTime}
	}
	if f.MinRating > 0 {
		q["averageRating"] = bson.M{"$gte": f.MinRating}
	}
	if len(f.DietaryTags) > 0 {
		q["dietaryTags"] = bson.M{"$in": f.DietaryTags}
	}
	if len(f.IDs) > 0 {
		q["_id"] = bson.M{"$in": f.IDs}
	}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	return q
}

func (r *recipeRepository) IncrementViews(ctx context.Context, id string) error {
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}))
}

func (r *recipeRepository) CountPublishedInCategory(ctx context.Context, categoryID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"category": categoryID, "isPublished": true})
	return n, translate(err)
}

func (r *recipeRepository) FindIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"author": authorID},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, translate(err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
