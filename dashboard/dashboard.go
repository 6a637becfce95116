package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gangwarsomya/social"
)

// Source is the upstream boundary the dashboard reads from.
// *social.Client satisfies it.
type Source interface {
	GetUsers(ctx context.Context) ([]social.User, error)
	GetPosts(ctx context.Context) ([]social.Post, error)
	GetComments(ctx context.Context, postID int64) ([]social.Comment, error)
}

// authChecker is implemented by sources that can verify credentials up front.
type authChecker interface {
	Authenticate(ctx context.Context) error
}

// Config tunes the dashboard views.
type Config struct {
	// TopN is the size of the top-users ranking.
	TopN int

	// CommentConcurrency caps in-flight comment fetches during a trending pass.
	CommentConcurrency int
}

func (cfg *Config) defaults() {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.CommentConcurrency <= 0 {
		cfg.CommentConcurrency = 8
	}
}

// Dashboard computes the views from a Source.
type Dashboard struct {
	src Source
	cfg Config

	mu    sync.Mutex
	names map[string]string
}

// New creates a Dashboard reading from src.
func New(src Source, cfg Config) *Dashboard {
	cfg.defaults()
	return &Dashboard{src: src, cfg: cfg}
}

// TopUsers verifies authentication, fetches users and posts in parallel and
// ranks the users by post count.
func (d *Dashboard) TopUsers(ctx context.Context) ([]RankedUser, error) {
	if ac, ok := d.src.(authChecker); ok {
		if err := ac.Authenticate(ctx); err != nil {
			slog.Warn("top users: authentication check failed", slog.Any("error", err))
			return nil, fmt.Errorf("top users: %w", err)
		}
	}

	users, posts, err := d.fetchUsersAndPosts(ctx)
	if err != nil {
		slog.Warn("top users: fetch failed", slog.Any("error", err))
		return nil, fmt.Errorf("top users: %w", err)
	}
	return TopUsers(users, posts, d.cfg.TopN), nil
}

// Feed fetches posts and returns them newest first with author names.
// Users are fetched only while the name cache is empty.
func (d *Dashboard) Feed(ctx context.Context) ([]FeedPost, error) {
	posts, err := d.src.GetPosts(ctx)
	if err != nil {
		slog.Warn("feed: fetch posts failed", slog.Any("error", err))
		return nil, fmt.Errorf("feed: %w", err)
	}

	names := d.cachedNames()
	if len(names) == 0 {
		users, err := d.src.GetUsers(ctx)
		if err != nil {
			slog.Warn("feed: fetch users failed", slog.Any("error", err))
			return nil, fmt.Errorf("feed: %w", err)
		}
		names = UserNames(users)
		d.mu.Lock()
		d.names = names
		d.mu.Unlock()
	}
	return Feed(posts, names), nil
}

// ResetNames empties the feed's user-name cache.
func (d *Dashboard) ResetNames() {
	d.mu.Lock()
	d.names = nil
	d.mu.Unlock()
}

func (d *Dashboard) cachedNames() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.names
}

// Trending fetches posts and users, counts comments per post and keeps the
// posts sharing the highest count.
//
// A failed comment fetch counts as zero comments for that post only. A failed
// users or posts fetch aborts the pass.
func (d *Dashboard) Trending(ctx context.Context) (TrendingResult, error) {
	users, posts, err := d.fetchUsersAndPosts(ctx)
	if err != nil {
		slog.Warn("trending: fetch failed", slog.Any("error", err))
		return TrendingResult{}, fmt.Errorf("trending: %w", err)
	}
	names := UserNames(users)

	counted := make([]TrendingPost, len(posts))
	var g errgroup.Group
	g.SetLimit(d.cfg.CommentConcurrency)
	for i, p := range posts {
		counted[i] = TrendingPost{Post: p, UserName: userName(names, p.UserID)}
		g.Go(func() error {
			comments, err := d.src.GetComments(ctx, p.ID)
			if err != nil {
				slog.Warn("trending: comment fetch failed, counting zero",
					slog.Int64("post_id", p.ID), slog.Any("error", err))
				return nil
			}
			counted[i].CommentCount = len(comments)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return TrendingResult{}, fmt.Errorf("trending: %w", err)
	}
	return SelectTrending(counted), nil
}

// fetchUsersAndPosts runs both bulk fetches concurrently; the first failure
// cancels the other.
func (d *Dashboard) fetchUsersAndPosts(ctx context.Context) ([]social.User, []social.Post, error) {
	var (
		users []social.User
		posts []social.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = d.src.GetUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = d.src.GetPosts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, posts, nil
}
