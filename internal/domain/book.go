package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Category is the reading status a user files a book under.
type Category string

// Reading-status categories.
const (
	CategoryToBeRead         Category = "To Be Read"
	CategoryCurrentlyReading Category = "Currently Reading"
	CategoryRead             Category = "Read"
)

var categories = []Category{CategoryToBeRead, CategoryCurrentlyReading, CategoryRead}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

// CategoryNames returns the category values in display order.
func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

// Rating bounds.
const (
	MinRating = 0
	MaxRating = 5
)

// Book is one user's shelf entry for one catalog title; in the feed it is a
// post. (UserID, GoogleBooksID) is unique. Comments and likes live inside the
// document and go away with it.
type Book struct {
	Document
	UserID        string    `json:"userId"`
	GoogleBooksID string    `json:"googleBooksId"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	PublishedDate string    `json:"publishedDate,omitempty"`
	Description   string    `json:"description,omitempty"`
	PageCount     int       `json:"pageCount,omitempty"`
	Categories    []string  `json:"categories"`
	Category      Category  `json:"category"`
	Rating        int       `json:"rating"`
	Review        string    `json:"review"`
	Likes         []string  `json:"likes"`
	Comments      []Comment `json:"comments"`
}

// Comment is a top-level comment on a book post. Username is a snapshot taken
// when the comment was written and is not updated on rename.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
}

// Reply is a response to a Comment.
type Reply struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// newSubID returns a time-ordered identifier for embedded comments and replies.
func newSubID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewComment builds a comment authored now.
func NewComment(userID, username, text string) Comment {
	return Comment{
		ID:        newSubID(),
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Replies:   []Reply{},
	}
}

// NewReply builds a reply authored now.
func NewReply(userID, username, text string) Reply {
	return Reply{
		ID:        newSubID(),
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// IsLikedBy reports whether userID has liked the post.
func (b *Book) IsLikedBy(userID string) bool {
	return slices.Contains(b.Likes, userID)
}

// ToggleLike flips userID's like and reports whether the post is now liked by them.
func (b *Book) ToggleLike(userID string) bool {
	if b.IsLikedBy(userID) {
		b.Likes = slices.DeleteFunc(b.Likes, func(id string) bool { return id == userID })
		return false
	}
	b.Likes = append(b.Likes, userID)
	return true
}

// FindComment returns the comment with the given ID, or nil.
func (b *Book) FindComment(commentID string) *Comment {
	for i := range b.Comments {
		if b.Comments[i].ID == commentID {
			return &b.Comments[i]
		}
	}
	return nil
}

// RemoveComment deletes the comment with the given ID and reports whether it existed.
func (b *Book) RemoveComment(commentID string) bool {
	n := len(b.Comments)
	b.Comments = slices.DeleteFunc(b.Comments, func(c Comment) bool { return c.ID == commentID })
	return len(b.Comments) != n
}

// Normalize replaces nil collections with empty ones so documents encode as
// [] rather than null.
func (b *Book) Normalize() {
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if b.Categories == nil {
		b.Categories = []string{}
	}
	if b.Likes == nil {
		b.Likes = []string{}
	}
	if b.Comments == nil {
		b.Comments = []Comment{}
	}
	for i := range b.Comments {
		if b.Comments[i].Replies == nil {
			b.Comments[i].Replies = []Reply{}
		}
	}
}
