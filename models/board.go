package models

import "time"

// Document is the whole persisted board. Every store backend loads and
// saves it as one unit; there is no per-collection access path.
type Document struct {
	Posts []Post `json:"posts" bson:"posts"`
	Users []User `json:"users,omitempty" bson:"users,omitempty"`
}

type Post struct {
	ID        string    `json:"id" bson:"id"`
	Title     string    `json:"title" bson:"title"`
	Author    string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	Category  string    `json:"category" bson:"category"`
	Comments  []Comment `json:"comments" bson:"comments"`
	Likes     int       `json:"likes" bson:"likes"`
	Solved    bool      `json:"solved" bson:"solved"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Comment lives inside its parent post and is deleted with it.
type Comment struct {
	ID      string `json:"id" bson:"id"`
	Author  string `json:"author" bson:"author"`
	Content string `json:"content" bson:"content"`
}

// User exists only in role mode. The password hash never serializes to
// JSON responses.
type User struct {
	ID           string `json:"id" bson:"id"`
	Username     string `json:"username" bson:"username"`
	PasswordHash string `json:"-" bson:"passwordHash"`
	Role         string `json:"role" bson:"role"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
