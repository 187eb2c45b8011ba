// Package server provides HTTP routing, middleware, and the local preview gallery.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] and [NoStore] cover the gallery's needs: request tracing and cache-free pages.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Gallery Handler
//
// [GalleryHandler] renders the staged photo grid at / and serves the preview
// images backing it from /previews/{id}. /health reports liveness in the
// backend's response shape.
//
// Preview bytes come from registry-owned copies of the staged sources, so the
// gallery keeps working when an original file moves or disappears after
// staging.
//
// # Current Usage
//
// The preview command starts a temporary server on a loopback address, opens
// the system browser at the gallery page, and shuts the server down when the
// command is interrupted.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
