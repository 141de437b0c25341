package auth

import "go.mongodb.org/mongo-driver/bson/primitive"

// Actor is the identity attached to an authenticated request.
type Actor struct {
	AccountID primitive.ObjectID
	Name      string
	Email     string
	IsAdmin   bool
}

// Owns reports whether the actor is the given owner.
func (a Actor) Owns(ownerID primitive.ObjectID) bool {
	return !a.AccountID.IsZero() && a.AccountID == ownerID
}

// CanAccess is the owner-or-admin predicate used for per-record authorization.
func (a Actor) CanAccess(ownerID primitive.ObjectID) bool {
	return a.IsAdmin || a.Owns(ownerID)
}
