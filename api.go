package social

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// GetUsers fetches every upstream user.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	body, err := c.get(ctx, EndpointUsers, c.UsersURL())
	if err != nil {
		return nil, err
	}
	users, err := parseUsers(body)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return users, nil
}

// GetPosts fetches every upstream post and stamps ObservedAt.
func (c *Client) GetPosts(ctx context.Context) ([]Post, error) {
	body, err := c.get(ctx, EndpointPosts, c.PostsURL())
	if err != nil {
		return nil, err
	}
	posts, err := parsePosts(body)
	if err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}

	now := c.cfg.Now().UnixMilli()
	spread := c.cfg.ObservedAtSpread.Milliseconds()
	for i := range posts {
		posts[i].ObservedAt = now
		if spread > 0 {
			posts[i].ObservedAt -= rand.Int64N(spread)
		}
	}
	return posts, nil
}

// GetComments fetches the comments on a single post.
func (c *Client) GetComments(ctx context.Context, postID int64) ([]Comment, error) {
	body, err := c.get(ctx, EndpointComments, c.CommentsURL(postID))
	if err != nil {
		return nil, err
	}
	comments, err := parseComments(body)
	if err != nil {
		return nil, fmt.Errorf("comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// get fetches url and converts non-2xx responses into *FetchError.
func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	resp, err := c.FetchAuthenticated(ctx, url, RequestOptions{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		slog.Warn("upstream non-2xx",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncateBytes(resp.Body, 500)))
		return nil, &FetchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp.Body),
		}
	}
	return resp.Body, nil
}
