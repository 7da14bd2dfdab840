// Package navigation lists directories inside an access-control boundary
// and narrows listings to files whose content contains a search term.
//
// The package is organized into:
//   - entry: FsEntry, the immutable metadata snapshot of one entry
//   - filter: Filter, a literal search term plus an optional date range
//   - gate: the adapter over the AccessPolicy collaborator
//   - scanner: the streaming, fail-closed content scanner
//   - source: ContentSource snapshots, including compressed rotated logs
//   - navigator: ListChildren and DefaultDirectory
//   - find: the recursive variant of the content filter
//
// Errors:
//   - *AccessDeniedError (errors.Is ErrAccessDenied): relative path, path
//     hidden by the policy, or OS permission refusal while listing
//   - *IOError: any other failure listing a directory
//
// Per-entry problems (an entry deleted between listing and stat, a file that
// cannot be read or decoded) never fail a call; the entry is dropped or
// treated as not matching, and a log record is written.
//
// Example Usage:
//
//	nav := navigation.New(policy, navigation.Options{Logger: logger})
//	entries, err := nav.ListChildren(ctx, "/var/log", &navigation.Filter{Text: "ERROR"})
package navigation
