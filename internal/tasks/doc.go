// Package tasks orchestrates the slideshow job lifecycle with real-time progress reporting.
//
// # State Machine
//
// [SlideshowEngine] owns the client-visible lifecycle of one slideshow job:
//
//	idle → staged → uploading → uploaded → render_queued → render_processing → render_done | render_error
//
// [SlideshowEngine.Clear] returns to idle from any state, releasing every
// preview handle and cancelling in-flight loops.
//
// # Core Operations
//
//  1. [SlideshowEngine.Stage] : Add photos to the staging set
//     - Filters candidates through the image extension allowlist
//     - Dedupes by identity (name, size, modification time)
//     - Enforces the 25-file cap, reporting per-file rejections
//     - Creates a local preview handle per accepted file
//
//  2. [SlideshowEngine.Upload] : Send the staged set to the backend
//     - One multipart request for the whole set
//     - Whole-percent progress, non-decreasing, ending at 100
//     - On failure the staging set is preserved for retry
//
//  3. [SlideshowEngine.Render] : Start a render and poll it to completion
//     - A new render supersedes the active one
//     - Poll snapshots for superseded render IDs are discarded on arrival
//     - Returns the final render job (done or error)
//
//  4. [SlideshowEngine.BulkDownload] : Fetch finished renders from history
//     - Worker pool with rate limiting
//     - Writes a JSON manifest next to the downloaded files
//
// # Staleness Discipline
//
// Every in-flight upload or render carries the engine generation it started
// under. Clearing, restaging, or starting a newer operation bumps the
// generation, and results from an older generation are discarded on arrival
// instead of overwriting newer state. Poll snapshots are additionally tagged
// with their render ID and applied only while that ID is the active render.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [SlideshowEngine] composes:
//   - [services.Uploader] : multipart upload client
//   - [services.Renderer] : render start/status/watch/download client
//   - [staging.Set] and [staging.Registry] : the staged files and their previews
package tasks
