// Package models defines domain entities for the cpx problem playlist service.
//
//   - [Playlist] : a named, user-owned collection of problems
//   - [Problem] : a coding problem, referenced by id from playlists
//   - [PlaylistProblem] : the link joining one playlist to one problem
//   - [BatchResult] : the row count returned by batch link operations
//
// Entities are plain structs with JSON tags matching the HTTP payloads.
// Each entity validates its own fields; repositories call Validate before writing.
package models
