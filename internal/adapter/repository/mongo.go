package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const resumesCollection = "resumes"

// MongoRepo stores each resume as one document of the resumes collection,
// with the same field names the editor uses.
type MongoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoResume struct {
	ID             string               `bson:"_id"`
	UserID         string               `bson:"userId"`
	Title          string               `bson:"title"`
	Content        bson.M               `bson:"content"`
	TemplateID     string               `bson:"templateId"`
	Sections       []string             `bson:"sections"`
	Customizations model.Customizations `bson:"customizations"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

// NewMongoRepo ensures the per-user listing index exists.
func NewMongoRepo(ctx context.Context, client *mongo.Client, database string) (*MongoRepo, error) {
	coll := client.Database(database).Collection(resumesCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create resumes index: %w", err)
	}
	return &MongoRepo{client: client, coll: coll}, nil
}

func toMongo(res *domain.Resume) mongoResume {
	return mongoResume{
		ID:             res.ID,
		UserID:         res.UserID,
		Title:          res.Title,
		Content:        bson.M(res.Content),
		TemplateID:     res.TemplateID,
		Sections:       res.Sections,
		Customizations: res.Customizations,
		CreatedAt:      res.CreatedAt,
		UpdatedAt:      res.UpdatedAt,
	}
}

func (m mongoResume) domain() *domain.Resume {
	res := &domain.Resume{
		ID:             m.ID,
		UserID:         m.UserID,
		Title:          m.Title,
		Content:        model.Content(m.Content),
		TemplateID:     m.TemplateID,
		Sections:       m.Sections,
		Customizations: m.Customizations,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if res.Content == nil {
		res.Content = model.Content{}
	}
	if res.Sections == nil {
		res.Sections = []string{}
	}
	return res
}

func (r *MongoRepo) Create(ctx context.Context, res *domain.Resume) error {
	if _, err := r.coll.InsertOne(ctx, toMongo(res)); err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}
	return nil
}

func (r *MongoRepo) Get(ctx context.Context, id string) (*domain.Resume, error) {
	var doc mongoResume
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find resume: %w", err)
	}
	return doc.domain(), nil
}

func (r *MongoRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Resume, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer cur.Close(ctx)

	out := []*domain.Resume{}
	for cur.Next(ctx) {
		var doc mongoResume
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode resume: %w", err)
		}
		out = append(out, doc.domain())
	}
	return out, cur.Err()
}

func (r *MongoRepo) Update(ctx context.Context, res *domain.Resume) error {
	doc := toMongo(res)
	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: res.ID}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "content", Value: doc.Content},
		{Key: "templateId", Value: doc.TemplateID},
		{Key: "sections", Value: doc.Sections},
		{Key: "customizations", Value: doc.Customizations},
		{Key: "updatedAt", Value: doc.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("update resume: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
