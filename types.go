package social

import "time"

// User is a social-media account as listed by the upstream /users mapping.
type User struct {
	ID   string
	Name string
}

// Post is a single upstream post.
type Post struct {
	ID      int64
	UserID  int64
	Content string

	// ObservedAt is stamped client-side when the post list is fetched.
	// It is not an upstream creation time.
	ObservedAt int64 // epoch millis
}

// ObservedTime returns ObservedAt as a time.Time.
func (p Post) ObservedTime() time.Time {
	return time.UnixMilli(p.ObservedAt)
}

// Comment is a single comment on a post.
type Comment struct {
	ID      int64
	PostID  int64
	Content string
}
