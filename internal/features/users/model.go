package users

import "time"

// User is the profile of a registered account. ReportsCreated and
// ReportsConfirmed are sets that only grow.
type User struct {
	ID               string    `json:"id" bson:"_id" firestore:"-"`
	Name             string    `json:"name" bson:"name" firestore:"name"`
	Email            string    `json:"email" bson:"email" firestore:"email"`
	PhotoURL         string    `json:"photoUrl,omitempty" bson:"photoUrl,omitempty" firestore:"photoUrl,omitempty"`
	IsVerified       bool      `json:"isVerified" bson:"isVerified" firestore:"isVerified"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	ReportsCreated   []string  `json:"reportsCreated" bson:"reportsCreated" firestore:"reportsCreated"`
	ReportsConfirmed []string  `json:"reportsConfirmed" bson:"reportsConfirmed" firestore:"reportsConfirmed"`
}

// RegisterRequest is the body of POST /users/me
type RegisterRequest struct {
	Name     string `json:"name" binding:"omitempty,min=2,max=50"`
	PhotoURL string `json:"photoUrl" binding:"omitempty,url"`
}
