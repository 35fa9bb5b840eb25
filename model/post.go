package model

import "time"

type Post struct {
	ID          string    `json:"id" db:"id" bson:"_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id" bson:"owner_id"`
	Title       string    `json:"title" db:"title" bson:"title"`
	Description string    `json:"description" db:"description" bson:"description"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url" bson:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	PostID    string    `json:"post_id" db:"post_id" bson:"post_id"`
	OwnerID   string    `json:"owner_id" db:"owner_id" bson:"owner_id"`
	Content   string    `json:"content" db:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}
