package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

const otpCollection = "otp_codes"

// MongoChallengeRepository stores at most one challenge per phone, enforced
// by a unique index on phone.
type MongoChallengeRepository struct {
	coll *mongo.Collection
}

func NewChallengeRepository(db *mongo.Database) *MongoChallengeRepository {
	return &MongoChallengeRepository{coll: db.Collection(otpCollection)}
}

// EnsureIndexes creates the unique phone index the supersede semantics rely
// on. Called once at startup.
func (r *MongoChallengeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create otp index: %w", err)
	}
	return nil
}

type mongoChallenge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Phone     string             `bson:"phone"`
	Code      string             `bson:"code"`
	Verified  bool               `bson:"verified"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Replace atomically supersedes any prior challenge for the phone. A single
// upsert keyed on the unique phone index means no interleaving of concurrent
// issues can leave two live challenges.
func (r *MongoChallengeRepository) Replace(ctx context.Context, c *domain.OtpChallenge) error {
	doc := mongoChallenge{
		Phone:     c.Phone,
		Code:      c.Code,
		Verified:  c.Verified,
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"phone": c.Phone},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replace challenge: %w", err)
	}
	return nil
}

// ConsumeMatching marks the live challenge for (phone, code) verified and
// returns it. The filter excludes verified and expired records and the update
// happens in one FindOneAndUpdate, so of two racing consumers exactly one
// observes the unverified document. Returns (nil, nil) when nothing matches.
func (r *MongoChallengeRepository) ConsumeMatching(ctx context.Context, phone, code string, now time.Time) (*domain.OtpChallenge, error) {
	filter := bson.M{
		"phone":      phone,
		"code":       code,
		"verified":   false,
		"expires_at": bson.M{"$gte": now},
	}

	var mc mongoChallenge
	err := r.coll.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$set": bson.M{"verified": true}},
	).Decode(&mc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("consume challenge: %w", err)
	}

	return &domain.OtpChallenge{
		ID:        mc.ID.Hex(),
		Phone:     mc.Phone,
		Code:      mc.Code,
		Verified:  true,
		ExpiresAt: mc.ExpiresAt,
		CreatedAt: mc.CreatedAt,
	}, nil
}
