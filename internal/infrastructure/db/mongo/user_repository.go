package mongo

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

const userCollection = "users"

const encryptionKeySize = 32

// UserRepository is the credential store adapter backed by MongoDB. The
// username field carries a unique index; duplicate inserts surface as a
// duplicate-key error.
type UserRepository struct {
	coll *mongo.Collection
	// startingCredit is granted to newly created users.
	startingCredit float64
}

func NewUserRepository(db *mongo.Database, startingCredit float64) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection), startingCredit: startingCredit}
}

type mongoUser struct {
	Identity      string  `bson:"identity"`
	Username      string  `bson:"username"`
	PasswordHash  string  `bson:"password_hash"`
	Rights        string  `bson:"rights"`
	Credit        float64 `bson:"credit"`
	EncryptionKey []byte  `bson:"encryption_key"`
	CreatedAt     int64   `bson:"created_at"`
	UpdatedAt     int64   `bson:"updated_at"`
}

func (r *UserRepository) ListAll(ctx context.Context) ([]domain.UserRecord, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.UserRecord
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		rec, err := toRecord(mu)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.UserRecord, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toRecord(mu)
}

func (r *UserRepository) UpdateBalance(ctx context.Context, identity uuid.UUID, credit float64, rights domain.Rights) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"identity": identity.String()},
		bson.M{"$set": bson.M{
			"credit":     credit,
			"rights":     rights.String(),
			"updated_at": time.Now().UTC().Unix(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update balance for %s: %w", identity, domain.ErrUserNotFound)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, username, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	key := make([]byte, encryptionKeySize)
	if _, err := rand.Read(key); err != nil {
		return false, fmt.Errorf("generate encryption key: %w", err)
	}

	now := time.Now().UTC().Unix()
	doc := mongoUser{
		Identity:      uuid.New().String(),
		Username:      username,
		PasswordHash:  string(hash),
		Rights:        domain.Chat.String(),
		Credit:        r.startingCredit,
		EncryptionKey: key,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert user: %w", err)
	}
	return true, nil
}

func (r *UserRepository) Delete(ctx context.Context, username string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func toRecord(mu mongoUser) (*domain.UserRecord, error) {
	identity, err := uuid.Parse(mu.Identity)
	if err != nil {
		return nil, fmt.Errorf("stored identity %q: %w", mu.Identity, err)
	}
	rights, err := domain.ParseRights(mu.Rights)
	if err != nil {
		return nil, fmt.Errorf("stored rights for %s: %w", mu.Username, err)
	}
	return &domain.UserRecord{
		Identity:      identity,
		Username:      mu.Username,
		PasswordHash:  mu.PasswordHash,
		Rights:        rights,
		Credit:        mu.Credit,
		EncryptionKey: mu.EncryptionKey,
		CreatedAt:     unixToTime(mu.CreatedAt),
		UpdatedAt:     unixToTime(mu.UpdatedAt),
	}, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
