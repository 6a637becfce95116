// Package dashboard derives the dashboard views from upstream users, posts and
// comments: the top users by post count, the newest-first feed and the
// trending (most-commented) posts.
//
// TopUsers, Feed and SelectTrending are pure functions of their input batch.
// Dashboard wires them to a Source and Poller re-runs a view on an interval
// without ever overlapping two cycles of the same view.
package dashboard
