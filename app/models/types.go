package models

import "time"

// Post represents a blog post with comments.
type Post struct {
	ID       ID         `json:"id"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Date     string     `json:"date"`
	Comments []*Comment `json:"comments,omitempty"`
}

// PostUpdate is the body sent when editing a post.
type PostUpdate struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID      ID     `json:"id"`
	Content string `json:"content"`
	Author  string `json:"author"`
	PostID  ID     `json:"postId"`
}

// User is a registered account. Only the bcrypt hash of the password is kept.
type User struct {
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session ties an issued token to the user that logged in.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
