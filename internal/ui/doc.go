// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building a slideshow:
//  1. [StagingView] : Browse the staged photos and drop unwanted ones
//  2. [ConfirmView] : Confirm the upload and render options
//  3. [UploadView] : Watch the multipart upload progress
//  4. [RenderView] : Follow backend render progress polls
//  5. [ResultView] : Display the finished render and save the mp4
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the SlideshowEngine, providing non-blocking status reporting during the pipeline.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, d, s, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
