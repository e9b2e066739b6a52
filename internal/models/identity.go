package models

import "strings"

// ClaimKind names an identity field that must be unique across accounts and requests.
type ClaimKind string

const (
	ClaimUsername   ClaimKind = "username"
	ClaimEmail      ClaimKind = "email"
	ClaimNationalID ClaimKind = "national_id"
)

// Claim owners.
const (
	OwnerUser         = "user"
	OwnerRegistration = "registration"
)

// IdentityClaim reserves one identity value for a user or a pending registration.
//
// The unique index on (kind, value) is what keeps username, email and national ID
// unique across both the users and registration_requests tables.
type IdentityClaim struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Kind      ClaimKind `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_identity_claim"`
	Value     string    `json:"value" gorm:"type:varchar(191);not null;uniqueIndex:idx_identity_claim"`
	OwnerType string    `json:"owner_type" gorm:"type:varchar(16);not null;index:idx_identity_owner"`
	OwnerID   int64     `json:"owner_id" gorm:"not null;index:idx_identity_owner"`
}

// TableName returns the database table name for the IdentityClaim model.
func (IdentityClaim) TableName() string {
	return "identity_claims"
}

// NormalizeClaim canonicalises a value so that lookups are case-insensitive
// for usernames and emails.
func NormalizeClaim(kind ClaimKind, value string) string {
	value = strings.TrimSpace(value)
	if kind == ClaimUsername || kind == ClaimEmail {
		return strings.ToLower(value)
	}
	return strings.ToUpper(value)
}

// Claims builds the claim set for the given identity values, skipping empty ones.
func Claims(ownerType string, ownerID int64, username, email, nationalID string) []IdentityClaim {
	values := []struct {
		kind  ClaimKind
		value string
	}{
		{ClaimUsername, username},
		{ClaimEmail, email},
		{ClaimNationalID, nationalID},
	}

	claims := make([]IdentityClaim, 0, len(values))
	for _, v := range values {
		normalized := NormalizeClaim(v.kind, v.value)
		if normalized == "" {
			continue
		}
		claims = append(claims, IdentityClaim{
			Kind:      v.kind,
			Value:     normalized,
			OwnerType: ownerType,
			OwnerID:   ownerID,
		})
	}
	return claims
}
