package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/pkg/metrics"
)

const (
	sessionsCollection = "chat_sessions"
	usersCollection    = "users"

	connectTimeout = 5 * time.Second
)

// Mongo wraps a MongoDB connection and exposes the store interfaces over it.
type Mongo struct {
	client   *mongo.Client
	sessions *mongo.Collection
	users    *mongo.Collection
}

// NewMongo connects to MongoDB and prepares collections and indexes.
// Returns an error if the server is unreachable, so callers can fall back
// to the file backend.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:   client,
		sessions: db.Collection(sessionsCollection),
		users:    db.Collection(usersCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}

	_, err = m.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Sessions returns the MongoDB-backed session store.
func (m *Mongo) Sessions() SessionStore {
	return &mongoSessionStore{coll: m.sessions}
}

// Users returns the MongoDB-backed user store.
func (m *Mongo) Users() UserStore {
	return &mongoUserStore{coll: m.users}
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoSessionStore struct {
	coll *mongo.Collection
}

func (s *mongoSessionStore) Create(ctx context.Context, userID, title string) (*model.Session, error) {
	now := time.Now().UTC()
	sess := &model.Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []model.Message{},
	}

	if _, err := s.coll.InsertOne(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	metrics.SessionsTotal.WithLabelValues("mongo").Inc()
	return sess, nil
}

func (s *mongoSessionStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	var sess model.Session
	err := s.coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// AppendMessages uses a single $push update so concurrent appends on the
// same session id cannot lose each other's messages.
func (s *mongoSessionStore) AppendMessages(ctx context.Context, sessionID string, msgs ...model.Message) (*model.Session, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{
			"$push": bson.M{"messages": bson.M{"$each": msgs}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append messages: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrSessionNotFound
	}
	return s.Get(ctx, sessionID)
}

func (s *mongoSessionStore) ListForUser(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}}}},
		{{Key: "$project", Value: bson.M{
			"user_id":       1,
			"title":         1,
			"created_at":    1,
			"updated_at":    1,
			"message_count": bson.M{"$size": "$messages"},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := make([]model.SessionSummary, 0)
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return summaries, nil
}

func (s *mongoSessionStore) Rename(ctx context.Context, sessionID, title string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{"title": title, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *mongoSessionStore) Delete(ctx context.Context, sessionID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type mongoUserStore struct {
	coll *mongo.Collection
}

func (s *mongoUserStore) Create(ctx context.Context, user *model.User) error {
	_, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *mongoUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *mongoUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *mongoUserStore) Save(ctx context.Context, user *model.User) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *mongoUserStore) List(ctx context.Context) ([]model.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}
