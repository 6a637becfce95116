package social

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("flexInt: %w", err)
		}
		*f = flexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// parseUsers parses the /users response, {"users": {"<id>": "<name>", ...}}.
//
// Users are returned in JavaScript object-key order: integer-like ids ascending,
// then remaining ids in document order. Ranking ties are broken by this order.
func parseUsers(body []byte) ([]User, error) {
	var raw struct {
		Users json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	if len(raw.Users) == 0 || string(raw.Users) == "null" {
		return []User{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Users))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("unmarshal users: expected object, got %v", tok)
	}

	users := []User{}
	seen := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		id, _ := keyTok.(string)
		var name string
		if err := dec.Decode(&name); err != nil {
			return nil, fmt.Errorf("unmarshal user %q: %w", id, err)
		}
		// Duplicate keys keep the first position and the last value.
		if i, ok := seen[id]; ok {
			users[i].Name = name
			continue
		}
		seen[id] = len(users)
		users = append(users, User{ID: id, Name: name})
	}

	sort.SliceStable(users, func(i, j int) bool {
		ni, iok := arrayIndexKey(users[i].ID)
		nj, jok := arrayIndexKey(users[j].ID)
		switch {
		case iok && jok:
			return ni < nj
		case iok:
			return true
		default:
			return false
		}
	})
	return users, nil
}

// arrayIndexKey reports whether id is a canonical non-negative integer,
// the keys JavaScript enumerates first and in numeric order.
func arrayIndexKey(id string) (uint64, bool) {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parsePosts parses the /posts response, {"posts": [...]}.
func parsePosts(body []byte) ([]Post, error) {
	var raw struct {
		Posts []struct {
			ID      flexInt `json:"id"`
			UserID  flexInt `json:"userid"`
			Content string  `json:"content"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal posts: %w", err)
	}
	posts := make([]Post, 0, len(raw.Posts))
	for _, p := range raw.Posts {
		posts = append(posts, Post{
			ID:      int64(p.ID),
			UserID:  int64(p.UserID),
			Content: p.Content,
		})
	}
	return posts, nil
}

// parseComments parses the /posts/{id}/comments response, {"comments": [...]}.
func parseComments(body []byte) ([]Comment, error) {
	var raw struct {
		Comments []struct {
			ID      flexInt `json:"id"`
			PostID  flexInt `json:"postid"`
			Content string  `json:"content"`
		} `json:"comments"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	comments := make([]Comment, 0, len(raw.Comments))
	for _, cm := range raw.Comments {
		comments = append(comments, Comment{
			ID:      int64(cm.ID),
			PostID:  int64(cm.PostID),
			Content: cm.Content,
		})
	}
	return comments, nil
}
