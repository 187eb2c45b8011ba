// Package services implements the HTTP clients for the Vibello backend: raw API access, multipart photo upload, and slideshow render polling.
//
// # Client Interfaces
//
// [Uploader] and [Renderer] cover the two typed surfaces the engine composes.
// Presentation layers depend on the interfaces so tests can substitute mocks.
//
// # Raw API Access
//
// [APIService] issues GET/POST requests against the backend base URL and
// captures status, headers, and body in [APIResponse], decoding JSON bodies
// opportunistically. The `api` command group exposes it directly, and
// [APIService.Health] / [APIService.Version] wrap the two probe endpoints.
//
// Extra request headers parsed from a curl command ([shared.CurlHeaders]) are
// applied to every request, for backends sitting behind an authenticating
// proxy.
//
// # Upload Implementation
//
// [UploadService] serializes all staged photos into one multipart request
// (field name "files" repeated) so the backend groups them under a single
// job. The body is assembled in memory first, which makes the total byte
// count exact; a counting reader then reports whole-percent transmission
// progress that is non-decreasing and finishes at 100.
//
// Parts carry an image Content-Type resolved from the file extension, since
// the backend skips any part that does not present one.
//
// # Render Implementation
//
// [RenderService] starts renders, fetches status snapshots, and runs the
// poll loop ([RenderService.Watch]) on a fixed cadence until the job reaches
// done or error. Transient poll failures are logged at debug level and
// skipped. Relative download URLs from status payloads are qualified against
// the base URL before use.
//
// # Error Handling
//
// Non-2xx responses prefer the FastAPI detail string when the body carries
// one, so backend messages like "Limit 25 files." surface verbatim. Raw API
// failures are wrapped with [shared.ErrAPIRequest] at the command layer.
package services
