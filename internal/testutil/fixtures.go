package testutil

import (
	"github.com/agenttrace/docstore/internal/pkg/id"
)

// User is a test entity with a string identifier
type User struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name" validate:"required,max=100"`
	Email string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Age   int    `bson:"age,omitempty" json:"age,omitempty" validate:"gte=0,lte=150"`
}

// GetID returns the user's identifier
func (u User) GetID() string { return u.ID }

// SetID sets the user's identifier
func (u *User) SetID(id string) { u.ID = id }

// NewTestUser creates a test user with a fresh identifier
func NewTestUser(name string) *User {
	return &User{
		ID:    id.NewObjectID(),
		Name:  name,
		Email: "test@example.com",
		Age:   30,
	}
}

// Product is a test entity without an IDSetter
type Product struct {
	SKU   string  `bson:"_id" json:"sku"`
	Title string  `bson:"title" json:"title"`
	Price float64 `bson:"price" json:"price"`
}

// GetID returns the product SKU
func (p Product) GetID() string { return p.SKU }

// UserSummary is a projection of User used by the typed query helpers
type UserSummary struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// GetID returns the summary's identifier
func (s UserSummary) GetID() string { return s.ID }
