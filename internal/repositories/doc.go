// Package repositories implements SQLite persistence for playlists, problems and the links between them.
//
// Key Implementations:
//   - [PlaylistRepository] : playlist create/read/delete scoped to the owning user
//   - [PlaylistProblemRepository] : batch add and remove of playlist-problem links
//   - [ProblemRepository] : problem records referenced by links
//
// Every method takes a [context.Context] and performs one logical store operation.
// Operations that need several statements run them in a single transaction.
//
// Not-found conditions are reported with the sentinels in the shared package
// ([shared.ErrPlaylistNotFound], [shared.ErrProblemNotFound]) so callers can tell
// "no row matched" apart from store failures with [errors.Is].
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
package repositories
