package dashboard

import "github.com/gangwarsomya/social"

// TrendingPost is a post with its comment count and author name.
type TrendingPost struct {
	Post         social.Post
	CommentCount int
	UserName     string
}

// TrendingResult is the outcome of a trending pass.
type TrendingResult struct {
	// Posts holds every post whose count equals MaxCommentCount, in input order.
	Posts           []TrendingPost
	MaxCommentCount int
}

// SelectTrending keeps the posts sharing the highest comment count.
// An empty batch yields MaxCommentCount 0 and no posts.
func SelectTrending(posts []TrendingPost) TrendingResult {
	res := TrendingResult{Posts: []TrendingPost{}}
	for _, p := range posts {
		res.MaxCommentCount = max(res.MaxCommentCount, p.CommentCount)
	}
	for _, p := range posts {
		if p.CommentCount == res.MaxCommentCount {
			res.Posts = append(res.Posts, p)
		}
	}
	return res
}
