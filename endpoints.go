package social

import "fmt"

// Operation names used for rate-limit bookkeeping and metrics.
const (
	EndpointAuth     = "auth"
	EndpointUsers    = "users"
	EndpointPosts    = "posts"
	EndpointComments = "comments"
)

// UsersURL returns the upstream user-mapping URL.
func (c *Client) UsersURL() string {
	return c.cfg.BaseURL + "/users"
}

// PostsURL returns the upstream post-list URL.
func (c *Client) PostsURL() string {
	return c.cfg.BaseURL + "/posts"
}

// CommentsURL returns the upstream comment-list URL for a post.
func (c *Client) CommentsURL(postID int64) string {
	return fmt.Sprintf("%s/posts/%d/comments", c.cfg.BaseURL, postID)
}
