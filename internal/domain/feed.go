package domain

// FeedLimit caps the number of posts in a feed.
const FeedLimit = 50

// PostAuthor is the owner information attached to each feed post.
type PostAuthor struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// FeedPost is a book decorated with its owner's current public profile.
// User is nil when the owner could not be resolved.
type FeedPost struct {
	Book
	User *PostAuthor `json:"user,omitempty"`
}
