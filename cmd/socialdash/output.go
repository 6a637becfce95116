package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/gangwarsomya/social"
	"github.com/gangwarsomya/social/dashboard"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	nameStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printer renders views as text or JSON.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) isJSON() bool { return p.format == "json" }

func (p printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether the printer writes to an interactive terminal.
func (p printer) isTerminal() bool {
	f, ok := p.w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// clearScreen homes the cursor and clears a terminal. No-op otherwise.
func (p printer) clearScreen() {
	if p.isTerminal() {
		fmt.Fprint(p.w, "\033[H\033[2J")
	}
}

type tokenJSON struct {
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	Valid     bool      `json:"valid"`
}

// token describes an oauth2 token without revealing the access token itself.
func (p printer) token(tok *oauth2.Token) error {
	out := tokenJSON{TokenType: tok.Type(), ExpiresAt: tok.Expiry.UTC(), Valid: tok.Valid()}
	if p.isJSON() {
		return p.writeJSON(out)
	}
	fmt.Fprintf(p.w, "%s token, expires %s\n", nameStyle.Render(out.TokenType), dimStyle.Render(out.ExpiresAt.Format(time.RFC3339)))
	return nil
}

func (p printer) title(s string) {
	fmt.Fprintln(p.w, titleStyle.Render(s))
}

type rankedUserJSON struct {
	Rank      int    `json:"rank"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int    `json:"postCount"`
}

func (p printer) topUsers(ranked []dashboard.RankedUser) error {
	if p.isJSON() {
		out := make([]rankedUserJSON, len(ranked))
		for i, r := range ranked {
			out[i] = rankedUserJSON{Rank: i + 1, ID: r.User.ID, Name: r.User.Name, PostCount: r.PostCount}
		}
		return p.writeJSON(out)
	}
	p.title("Top Users")
	for i, r := range ranked {
		fmt.Fprintf(p.w, "%d. %s %s\n", i+1, nameStyle.Render(r.User.Name), dimStyle.Render(fmt.Sprintf("(%d posts)", r.PostCount)))
	}
	return nil
}

type trendingJSON struct {
	MaxCommentCount int                `json:"maxCommentCount"`
	Posts           []trendingPostJSON `json:"posts"`
}

type trendingPostJSON struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userid"`
	UserName     string `json:"userName"`
	Content      string `json:"content"`
	CommentCount int    `json:"commentCount"`
}

func (p printer) trending(res dashboard.TrendingResult) error {
	if p.isJSON() {
		out := trendingJSON{MaxCommentCount: res.MaxCommentCount, Posts: make([]trendingPostJSON, len(res.Posts))}
		for i, tp := range res.Posts {
			out.Posts[i] = trendingPostJSON{
				ID:           tp.Post.ID,
				UserID:       tp.Post.UserID,
				UserName:     tp.UserName,
				Content:      tp.Post.Content,
				CommentCount: tp.CommentCount,
			}
		}
		return p.writeJSON(out)
	}
	p.title(fmt.Sprintf("Trending Posts (%d comments)", res.MaxCommentCount))
	for _, tp := range res.Posts {
		fmt.Fprintf(p.w, "%s %s\n  %s\n", nameStyle.Render(tp.UserName), dimStyle.Render(fmt.Sprintf("post %d", tp.Post.ID)), tp.Post.Content)
	}
	return nil
}

type feedPostJSON struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userid"`
	UserName  string `json:"userName,omitempty"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func (p printer) feed(posts []dashboard.FeedPost) error {
	if p.isJSON() {
		out := make([]feedPostJSON, len(posts))
		for i, fp := range posts {
			out[i] = feedPostJSON{ID: fp.ID, UserID: fp.UserID, UserName: fp.UserName, Content: fp.Content, Timestamp: fp.ObservedAt}
		}
		return p.writeJSON(out)
	}
	p.title("Feed")
	for _, fp := range posts {
		fmt.Fprintf(p.w, "%s %s\n  %s\n", nameStyle.Render(fp.UserName), dimStyle.Render(fp.ObservedTime().Format(time.DateTime)), fp.Content)
	}
	return nil
}

// userMap encodes users as a JSON object whose keys keep slice order.
type userMap []social.User

func (m userMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, u := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(u.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(u.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// users renders users in the upstream {"users": {...}} shape, in ranking order.
func (p printer) users(users []social.User) error {
	return p.writeJSON(struct {
		Users userMap `json:"users"`
	}{Users: users})
}

func (p printer) posts(posts []social.Post) error {
	out := make([]feedPostJSON, len(posts))
	for i, ps := range posts {
		out[i] = feedPostJSON{ID: ps.ID, UserID: ps.UserID, Content: ps.Content, Timestamp: ps.ObservedAt}
	}
	return p.writeJSON(map[string]any{"posts": out})
}

type commentJSON struct {
	ID      int64  `json:"id"`
	PostID  int64  `json:"postid"`
	Content string `json:"content"`
}

func (p printer) comments(comments []social.Comment) error {
	out := make([]commentJSON, len(comments))
	for i, c := range comments {
		out[i] = commentJSON{ID: c.ID, PostID: c.PostID, Content: c.Content}
	}
	return p.writeJSON(map[string]any{"comments": out})
}
