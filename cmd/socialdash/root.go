package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/gangwarsomya/social"
	"github.com/gangwarsomya/social/dashboard"
)

// validFormats are the accepted --format values.
var validFormats = []string{"text", "json"}

// rootOptions holds global flags and the state resolved from them.
type rootOptions struct {
	ConfigPath string
	Format     string
	Verbose    bool

	cfg *appConfig

	// newSource builds the upstream client. Replaced in tests.
	newSource func(cfg social.ClientConfig) (source, error)
}

// source is what the commands need from the upstream client.
type source interface {
	dashboard.Source
	Authenticate(ctx context.Context) error
	TokenSource(ctx context.Context) oauth2.TokenSource
}

func defaultSource(cfg social.ClientConfig) (source, error) {
	c, err := social.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// newRootCommand creates the socialdash command tree.
func newRootCommand() *cobra.Command {
	return buildRootCommand(&rootOptions{newSource: defaultSource})
}

func buildRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "socialdash",
		Short:         "Social-media analytics from the upstream API",
		Long:          "socialdash polls the upstream social API and shows top users, trending posts and a live feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default "+defaultConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newAuthCommand(opts))
	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newPostsCommand(opts))
	cmd.AddCommand(newCommentsCommand(opts))
	cmd.AddCommand(newTopUsersCommand(opts))
	cmd.AddCommand(newTrendingCommand(opts))
	cmd.AddCommand(newFeedCommand(opts))

	return cmd
}

func (o *rootOptions) printer(cmd *cobra.Command) printer {
	return printer{format: o.Format, w: cmd.OutOrStdout()}
}

func (o *rootOptions) upstream() (source, error) {
	src, err := o.newSource(o.cfg.Client)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return src, nil
}

func (o *rootOptions) newDashboard() (*dashboard.Dashboard, error) {
	src, err := o.upstream()
	if err != nil {
		return nil, err
	}
	return dashboard.New(src, o.cfg.Dashboard), nil
}

func newAuthCommand(opts *rootOptions) *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a bearer token and report whether authentication works",
		Long: `Obtain a bearer token and report whether authentication works.

The credential descriptor comes from the [credentials] table of the config file.
client_id and client_secret are required and may also be set through
SOCIAL_CLIENT_ID and SOCIAL_CLIENT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.upstream()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)
			if err := src.Authenticate(cmd.Context()); err != nil {
				if p.isJSON() {
					_ = p.writeJSON(map[string]string{"status": "error", "message": "Authentication failed"})
				}
				return err
			}
			if showToken {
				tok, err := src.TokenSource(cmd.Context()).Token()
				if err != nil {
					return err
				}
				return p.token(tok)
			}
			if p.isJSON() {
				return p.writeJSON(map[string]string{"status": "authenticated", "message": "Authentication successful"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Authentication successful")
			return nil
		},
	}
	cmd.Flags().BoolVar(&showToken, "token", false, "describe the cached oauth2 token (type and expiry)")
	return cmd
}

func newUsersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Print the upstream user mapping as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.upstream()
			if err != nil {
				return err
			}
			users, err := src.GetUsers(cmd.Context())
			if err != nil {
				return err
			}
			return opts.printer(cmd).users(users)
		},
	}
}

func newPostsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "Print the upstream posts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.upstream()
			if err != nil {
				return err
			}
			posts, err := src.GetPosts(cmd.Context())
			if err != nil {
				return err
			}
			return opts.printer(cmd).posts(posts)
		},
	}
}

func newCommentsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <postID>",
		Short: "Print the comments on a post as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid post id %q: %w", args[0], err)
			}
			src, err := opts.upstream()
			if err != nil {
				return err
			}
			comments, err := src.GetComments(cmd.Context(), postID)
			if err != nil {
				return err
			}
			return opts.printer(cmd).comments(comments)
		},
	}
}

func newTopUsersCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top-users",
		Short: "Show the users with the most posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("limit") {
				opts.cfg.Dashboard.TopN = limit
			}
			d, err := opts.newDashboard()
			if err != nil {
				return err
			}
			ranked, err := d.TopUsers(cmd.Context())
			if err != nil {
				return err
			}
			return opts.printer(cmd).topUsers(ranked)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", dashboard.DefaultTopN, "number of users to show")
	return cmd
}

func newTrendingCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "Show the posts with the most comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.newDashboard()
			if err != nil {
				return err
			}
			res, err := d.Trending(cmd.Context())
			if err != nil {
				return err
			}
			return opts.printer(cmd).trending(res)
		},
	}
}

func newFeedCommand(opts *rootOptions) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show posts newest first, optionally refreshing on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.newDashboard()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)
			if !watch {
				posts, err := d.Feed(cmd.Context())
				if err != nil {
					return err
				}
				return p.feed(posts)
			}

			if !cmd.Flags().Changed("interval") {
				interval = opts.cfg.PollInterval
			}
			ctx := cmd.Context()
			poller := dashboard.NewPoller("feed", interval, func(ctx context.Context) error {
				posts, err := d.Feed(ctx)
				if err != nil {
					return err
				}
				if !p.isJSON() {
					p.clearScreen()
				}
				return p.feed(posts)
			})
			poller.Start(ctx)
			<-ctx.Done()
			poller.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", dashboard.DefaultPollInterval, "poll interval for --watch")
	return cmd
}
