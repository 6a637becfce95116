package dashboard

import (
	"sort"
	"strconv"

	"github.com/gangwarsomya/social"
)

// DefaultTopN is the number of users shown on the top-users view.
const DefaultTopN = 5

// RankedUser is a user with the number of posts they authored in the batch.
type RankedUser struct {
	User      social.User
	PostCount int
}

// TopUsers ranks users by post count, highest first, and returns at most n.
// Ties keep the order of users. Users without posts count as zero.
func TopUsers(users []social.User, posts []social.Post, n int) []RankedUser {
	counts := make(map[string]int, len(users))
	for _, p := range posts {
		counts[strconv.FormatInt(p.UserID, 10)]++
	}

	ranked := make([]RankedUser, len(users))
	for i, u := range users {
		ranked[i] = RankedUser{User: u, PostCount: counts[u.ID]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PostCount > ranked[j].PostCount
	})

	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
