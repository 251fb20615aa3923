package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatmind/chat-api/internal/core/domain"
)

const collectionChatrooms = "chatroom"

// chatroomDoc is the BSON shape of a room. Kept separate from the domain
// type so the stored schema is not coupled to the JSON contract.
type chatroomDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name,omitempty"`
	Type      string             `bson:"type"`
	Members   []string           `bson:"members"`
	Admins    []string           `bson:"admins"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *chatroomDoc) toDomain() *domain.Chatroom {
	return &domain.Chatroom{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Type:      domain.RoomType(d.Type),
		Members:   d.Members,
		Admins:    d.Admins,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type ChatroomRepository struct {
	col *mongo.Collection
}

func NewChatroomRepository(db *mongo.Database) *ChatroomRepository {
	return &ChatroomRepository{col: db.Collection(collectionChatrooms)}
}

// Create inserts a new room document, stamping created_at and updated_at.
func (r *ChatroomRepository) Create(ctx context.Context, room *domain.Chatroom) (*domain.Chatroom, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := chatroomDoc{
		Name:      room.Name,
		Type:      string(room.Type),
		Members:   room.Members,
		Admins:    room.Admins,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ChatroomRepository) FindByID(ctx context.Context, roomID string) (*domain.Chatroom, error) {
	id, err := oid(roomID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc chatroomDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindDirect looks up the direct room whose member set is exactly the two
// given users. The $size guard keeps a group containing both users from
// matching.
func (r *ChatroomRepository) FindDirect(ctx context.Context, userA, userB string) (*domain.Chatroom, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"type":    string(domain.RoomDirect),
		"members": bson.M{"$all": bson.A{userA, userB}, "$size": 2},
	}

	var doc chatroomDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListByMember returns all rooms containing userID, most recently updated
// first.
func (r *ChatroomRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Chatroom, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rooms := make([]*domain.Chatroom, 0)
	for cur.Next(ctx) {
		var doc chatroomDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rooms = append(rooms, doc.toDomain())
	}
	return rooms, cur.Err()
}

// Touch stamps the room's updated_at with the current time.
func (r *ChatroomRepository) Touch(ctx context.Context, roomID string) error {
	id, err := oid(roomID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the chatroom queries rely on.
func (r *ChatroomRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "members", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "members", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
