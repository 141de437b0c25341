package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShippingAddress is both the saved address on an account and the snapshot
// copied into an order.
type ShippingAddress struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// Complete reports whether every line of the address is filled in.
func (a ShippingAddress) Complete() bool {
	return strings.TrimSpace(a.Address) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.PostalCode) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// Merge overwrites the fields that are non-blank in patch.
func (a ShippingAddress) Merge(patch ShippingAddress) ShippingAddress {
	if v := strings.TrimSpace(patch.Address); v != "" {
		a.Address = v
	}
	if v := strings.TrimSpace(patch.City); v != "" {
		a.City = v
	}
	if v := strings.TrimSpace(patch.PostalCode); v != "" {
		a.PostalCode = v
	}
	if v := strings.TrimSpace(patch.Country); v != "" {
		a.Country = v
	}
	return a
}

// Account represents a storefront user, customer or administrator.
type Account struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"password" json:"-"`
	IsAdmin         bool               `bson:"isAdmin" json:"isAdmin"`
	ShippingAddress *ShippingAddress   `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AccountSummary is the identifying slice of an account returned to clients
// after login or registration.
type AccountSummary struct {
	ID      primitive.ObjectID `json:"_id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	IsAdmin bool               `json:"isAdmin"`
}

func (a Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email, IsAdmin: a.IsAdmin}
}
