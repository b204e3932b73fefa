package models

import (
	"errors"
	"strings"
)

var (
	// ErrFieldsRequired is returned when a post form has a blank field.
	ErrFieldsRequired = errors.New("all fields are required")
	// ErrCommentRequired is returned when comment content is blank.
	ErrCommentRequired = errors.New("comment is required")
)

// PostForm is the new-post form.
type PostForm struct {
	Title string `form:"title" validate:"notblank"`
	Body  string `form:"body" validate:"notblank"`
	Date  string `form:"date" validate:"notblank"`
}

// Validate reports ErrFieldsRequired when any field is blank.
func (f *PostForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return ErrFieldsRequired
	}
	return nil
}

// Post converts the form into a new post with a generated ID.
func (f *PostForm) Post() *Post {
	return &Post{
		ID:    NextID(),
		Title: f.Title,
		Body:  f.Body,
		Date:  f.Date,
	}
}

// EditForm is the edit-post form. The date is not editable.
type EditForm struct {
	Title string `form:"title" validate:"notblank"`
	Body  string `form:"body" validate:"notblank"`
}

// Validate reports ErrFieldsRequired when any field is blank.
func (f *EditForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return ErrFieldsRequired
	}
	return nil
}

// Update converts the form into the PUT body.
func (f *EditForm) Update() PostUpdate {
	return PostUpdate{Title: f.Title, Body: f.Body}
}

// CommentForm is the add-comment form.
type CommentForm struct {
	Content string `form:"content" validate:"notblank"`
}

// Validate reports ErrCommentRequired when the content trims to nothing.
func (f *CommentForm) Validate() error {
	if err := validate.Struct(f); err != nil {
		return ErrCommentRequired
	}
	return nil
}

// Credentials is shared by the login and signup forms.
type Credentials struct {
	Username string `form:"username" validate:"required"`
	// bcrypt hashes at most 72 bytes.
	Password string `form:"password" validate:"required,maxbytes=72"`
}

// Validate returns a *ValidationError naming each missing or oversized field.
func (c *Credentials) Validate() error {
	c.Username = strings.TrimSpace(c.Username)
	if err := validate.Struct(c); err != nil {
		return toValidationError(err)
	}
	return nil
}
