// Package tasks runs long playlist operations with progress reporting.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] exports many of a user's playlists at once:
//   - Playlists are read from a [PlaylistSource] (repositories.PlaylistRepository)
//   - A pool of workers writes each playlist with the formatter package
//   - Partial failures are recorded per playlist rather than aborting the run
//   - A manifest (export_manifest.json) summarizing the run is written to the output directory
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate] values.
// Updates use select with default so a slow or absent reader never blocks an export.
package tasks
