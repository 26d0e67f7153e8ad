package models

import "freight-dispatch-api-server/internal/state"

// User matches the account document in MongoDB. ActorID is the stable
// identity written into audit records.
type User struct {
	Email    string     `bson:"email"`
	Name     string     `bson:"name"`
	Password string     `bson:"password"`
	Role     state.Role `bson:"role"`
	ActorID  string     `bson:"actorID"`
	Status   string     `bson:"status"`
}
