package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangwarsomya/social"
	"github.com/gangwarsomya/social/dashboard"
)

func TestPrinter_ClearScreenOnlyOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := printer{format: "text", w: &buf}
	assert.False(t, p.isTerminal())
	p.clearScreen()
	assert.Empty(t, buf.String())
}

func TestPrinter_FeedText(t *testing.T) {
	var buf bytes.Buffer
	p := printer{format: "text", w: &buf}
	require.NoError(t, p.feed([]dashboard.FeedPost{
		{Post: social.Post{ID: 1, Content: "first post"}, UserName: "Alice"},
		{Post: social.Post{ID: 2, Content: "second post"}, UserName: dashboard.UnknownUser},
	}))

	out := buf.String()
	assert.Contains(t, out, "Feed")
	assert.Contains(t, out, "first post")
	assert.Contains(t, out, "Unknown User")
}

func TestPrinter_TrendingEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	p := printer{format: "json", w: &buf}
	require.NoError(t, p.trending(dashboard.SelectTrending(nil)))
	assert.JSONEq(t, `{"maxCommentCount":0,"posts":[]}`, buf.String())
}

func TestUserMap_MarshalJSON(t *testing.T) {
	b, err := userMap{{ID: "3", Name: "C"}, {ID: "1", Name: `A "quoted"`}}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"3":"C","1":"A \"quoted\""}`, string(b))

	b, err = userMap(nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}
