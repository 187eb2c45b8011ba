// Package staging manages the set of photos selected for the next upload and their local preview handles.
//
// # File Identity
//
// Every staged file carries an identity derived from its name, size, and
// modification time via [FileID]. Picking the same file twice therefore
// dedupes instead of staging a second copy, and identities stay stable
// across restarts as long as the file is untouched.
//
// # Staging Set
//
// [Set] holds staged files in insertion order behind a fixed cap (25 by
// default, matching the backend's per-upload limit). Additions past the cap
// or with a duplicate identity are refused with typed errors from the shared
// package; callers report them as rejections without losing the files that
// did fit.
//
// [Pick] turns raw candidate paths into stageable files plus a rejection
// list, filtering on the backend's allowed image extensions with the same
// "not-an-image" reason the backend uses.
//
// # Preview Handles
//
// [Registry] owns the local preview lifecycle: Create copies a staged photo
// into a registry directory and hands back a path, Release frees exactly one
// handle, and ReleaseAll guarantees nothing is left behind when the slideshow
// is cleared. Double release is a safe no-op. The preview gallery server and
// the TUI read previews only through registry paths, so a released handle can
// never be observed again.
package staging
