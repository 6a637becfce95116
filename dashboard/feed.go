package dashboard

import (
	"sort"
	"strconv"

	"github.com/gangwarsomya/social"
)

// UnknownUser is shown for posts whose author is missing from the user list.
const UnknownUser = "Unknown User"

// FeedPost is a post annotated with its author's display name.
type FeedPost struct {
	social.Post
	UserName string
}

// UserNames indexes users by id.
func UserNames(users []social.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

// userName resolves a post author, falling back to UnknownUser.
func userName(names map[string]string, userID int64) string {
	if name, ok := names[strconv.FormatInt(userID, 10)]; ok && name != "" {
		return name
	}
	return UnknownUser
}

// Feed annotates posts with author names and orders them newest first.
// Posts with equal ObservedAt keep their input order.
func Feed(posts []social.Post, names map[string]string) []FeedPost {
	feed := make([]FeedPost, len(posts))
	for i, p := range posts {
		feed[i] = FeedPost{Post: p, UserName: userName(names, p.UserID)}
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].ObservedAt > feed[j].ObservedAt
	})
	return feed
}
