package repository

import (
	"testing"
	"time"

	"instamakaan/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAccountDocumentRoundTrip(t *testing.T) {
	code := "483920"
	expires := time.Date(2025, 3, 1, 9, 2, 0, 0, time.UTC)
	sent := expires.Add(-2 * time.Minute)

	account := &entity.Account{
		Email:         "a@x.com",
		PasswordHash:  "$2a$10$hash",
		Role:          entity.RoleTenant,
		OTPCode:       &code,
		OTPExpiresAt:  &expires,
		OTPLastSentAt: &sent,
		OTPRetryCount: 2,
	}
	account.ID = uuid.New()
	account.CreatedAt = sent
	account.UpdatedAt = sent

	raw, err := bson.Marshal(toAccountDocument(account))
	require.NoError(t, err)

	var doc accountDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	got, err := doc.toEntity()
	require.NoError(t, err)

	require.Equal(t, account.ID, got.ID)
	require.Equal(t, "483920", *got.OTPCode)
	require.True(t, expires.Equal(*got.OTPExpiresAt))
	require.Equal(t, 2, got.OTPRetryCount)
	require.Nil(t, got.ResetToken)
	require.Nil(t, got.ResetTokenExpiresAt)
}

func TestAccountDocumentStoresNullsForClearedFields(t *testing.T) {
	account := &entity.Account{Email: "a@x.com", Role: entity.RoleTenant}
	account.ID = uuid.New()

	raw, err := bson.Marshal(toAccountDocument(account))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	require.Contains(t, fields, "otp_code")
	require.Nil(t, fields["otp_code"])
	require.Contains(t, fields, "reset_token")
	require.Equal(t, account.ID.String(), fields["_id"])
}

func TestAccountDocumentRejectsBadID(t *testing.T) {
	_, err := accountDocument{ID: "not-a-uuid"}.toEntity()
	require.Error(t, err)
}
