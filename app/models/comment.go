package models

// NewComment builds a comment on postID with a freshly generated ID.
func NewComment(postID ID, author, content string) *Comment {
	return &Comment{
		ID:      NextID(),
		Content: content,
		Author:  author,
		PostID:  postID,
	}
}
