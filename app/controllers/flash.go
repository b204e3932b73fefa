package controllers

import (
	"net/http"
	"net/url"
)

// Flash codes carried across a redirect in the msg query parameter. Only
// known codes are rendered so the page never echoes arbitrary query text.
const (
	FlashCommentAdded   = "comment-added"
	FlashCommentDeleted = "comment-deleted"
	FlashSignedOut      = "signed-out"
)

var flashMessages = map[string]string{
	FlashCommentAdded:   "Comment added successfully!",
	FlashCommentDeleted: "Comment deleted successfully!",
	FlashSignedOut:      "Signed out successfully!",
}

// Messages rendered inline when an action fails.
const (
	MsgLoginToComment      = "You need to log in to post a comment."
	MsgCommentRequired     = "Comment is required"
	MsgCommentFailed       = "Error adding comment."
	MsgCommentDeleteFailed = "Error deleting comment."
	MsgLoginToDelete       = "You need to log in to delete a post."
	MsgPostDeleteFailed    = "Error deleting post."
	MsgFieldsRequired      = "All fields are required"
	MsgPostAdded           = "Post added successfully!"
	MsgPostAddFailed       = "Error adding post. Please try again."
	MsgPostUpdateFailed    = "Error updating post."
	MsgUserExists          = "User already exists"
	MsgSignupSucceeded     = "Signup successful! You can now log in."
	MsgSignupFailed        = "Error signing up. Please try again."
	MsgLoginSucceeded      = "Login successful!"
	MsgInvalidCredentials  = "Invalid username or password"
	MsgLoginFailed         = "Error logging in. Please try again."
)

// flashFrom returns the message for the msg code in the request, if any.
func flashFrom(r *http.Request) string {
	return flashMessages[r.URL.Query().Get("msg")]
}

// withFlash appends a msg code to a local path.
func withFlash(path, code string) string {
	return path + "?" + url.Values{"msg": {code}}.Encode()
}
