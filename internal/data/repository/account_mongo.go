package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instamakaan/internal/data/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const accountsCollection = "accounts"

// accountDocument is the bson shape of entity.Account. Nil pointers are
// stored as null so cleared OTP/reset fields stay queryable.
type accountDocument struct {
	ID                  string     `bson:"_id"`
	Email               string     `bson:"email"`
	PasswordHash        string     `bson:"password_hash"`
	Role                string     `bson:"role"`
	IsVerified          bool       `bson:"is_verified"`
	OTPCode             *string    `bson:"otp_code"`
	OTPExpiresAt        *time.Time `bson:"otp_expires_at"`
	OTPLastSentAt       *time.Time `bson:"otp_last_sent_at"`
	OTPRetryCount       int        `bson:"otp_retry_count"`
	ResetToken          *string    `bson:"reset_token"`
	ResetTokenExpiresAt *time.Time `bson:"reset_token_expires_at"`
	CreatedAt           time.Time  `bson:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at"`
}

func toAccountDocument(a *entity.Account) accountDocument {
	return accountDocument{
		ID:                  a.ID.String(),
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		Role:                string(a.Role),
		IsVerified:          a.IsVerified,
		OTPCode:             a.OTPCode,
		OTPExpiresAt:        a.OTPExpiresAt,
		OTPLastSentAt:       a.OTPLastSentAt,
		OTPRetryCount:       a.OTPRetryCount,
		ResetToken:          a.ResetToken,
		ResetTokenExpiresAt: a.ResetTokenExpiresAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func (d accountDocument) toEntity() (*entity.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse account id %q: %w", d.ID, err)
	}
	a := &entity.Account{
		Email:               d.Email,
		PasswordHash:        d.PasswordHash,
		Role:                entity.AccountRole(d.Role),
		IsVerified:          d.IsVerified,
		OTPCode:             d.OTPCode,
		OTPExpiresAt:        utcPtr(d.OTPExpiresAt),
		OTPLastSentAt:       utcPtr(d.OTPLastSentAt),
		OTPRetryCount:       d.OTPRetryCount,
		ResetToken:          d.ResetToken,
		ResetTokenExpiresAt: utcPtr(d.ResetTokenExpiresAt),
	}
	a.ID = id
	a.CreatedAt = d.CreatedAt.UTC()
	a.UpdatedAt = d.UpdatedAt.UTC()
	return a, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

type accountMongoRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewAccountMongoRepository returns the document-store driver and makes sure
// the unique email index exists.
func NewAccountMongoRepository(ctx context.Context, db *mongo.Database, log *zap.Logger) (AccountRepository, error) {
	coll := db.Collection(accountsCollection)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys: bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetName("reset_token").
				SetPartialFilterExpression(bson.M{"reset_token": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure account indexes: %w", err)
	}

	return &accountMongoRepository{
		coll: coll,
		log:  log.With(zap.String("repository", "account"), zap.String("driver", "mongo")),
	}, nil
}

func (r *accountMongoRepository) Create(ctx context.Context, account *entity.Account) error {
	_, err := r.coll.InsertOne(ctx, toAccountDocument(account))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		r.log.Error("Failed to create account", zap.Error(err), zap.String("email", account.Email))
		return fmt.Errorf("create account %s: %w", account.Email, err)
	}
	return nil
}

func (r *accountMongoRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	account, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		r.log.Error("Failed to find account by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find account by email %s: %w", email, err)
	}
	return account, nil
}

func (r *accountMongoRepository) FindByResetToken(ctx context.Context, token string) (*entity.Account, error) {
	account, err := r.findOne(ctx, bson.M{"reset_token": token})
	if err != nil {
		r.log.Error("Failed to find account by reset token", zap.Error(err))
		return nil, fmt.Errorf("find account by reset token: %w", err)
	}
	return account, nil
}

func (r *accountMongoRepository) SetOTP(ctx context.Context, email, code string, expiresAt, sentAt time.Time) error {
	return r.updateByEmail(ctx, "set otp", email, bson.M{"$set": bson.M{
		"otp_code":         code,
		"otp_expires_at":   expiresAt,
		"otp_last_sent_at": sentAt,
		"otp_retry_count":  0,
		"updated_at":       sentAt,
	}})
}

func (r *accountMongoRepository) ReleaseOTPThrottle(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, "release otp throttle", email, bson.M{"$set": bson.M{
		"otp_last_sent_at": nil,
	}})
}

func (r *accountMongoRepository) IncrementOTPRetry(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, "increment otp retry", email, bson.M{"$inc": bson.M{
		"otp_retry_count": 1,
	}})
}

func (r *accountMongoRepository) MarkVerified(ctx context.Context, email, code string) (bool, error) {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email, "otp_code": code},
		bson.M{"$set": bson.M{
			"is_verified":     true,
			"otp_code":        nil,
			"otp_expires_at":  nil,
			"otp_retry_count": 0,
			"updated_at":      time.Now().UTC(),
		}},
	)
	if err != nil {
		r.log.Error("Failed to mark account verified", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("mark account %s verified: %w", email, err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *accountMongoRepository) SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	return r.updateByEmail(ctx, "set reset token", email, bson.M{"$set": bson.M{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
		"updated_at":             time.Now().UTC(),
	}})
}

func (r *accountMongoRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (bool, error) {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"reset_token": token},
		bson.M{"$set": bson.M{
			"password_hash":          passwordHash,
			"reset_token":            nil,
			"reset_token_expires_at": nil,
			"updated_at":             time.Now().UTC(),
		}},
	)
	if err != nil {
		r.log.Error("Failed to consume reset token", zap.Error(err))
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *accountMongoRepository) findOne(ctx context.Context, filter bson.M) (*entity.Account, error) {
	var doc accountDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity()
}

func (r *accountMongoRepository) updateByEmail(ctx context.Context, op, email string, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err), zap.String("email", email))
		return fmt.Errorf("%s for %s: %w", op, email, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s: account %s not found", op, email)
	}
	return nil
}
