// Package models defines domain entities and persistence interfaces for the Vibello slideshow client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs mirroring backend payloads
//   - [StagedFile] : A locally selected photo with derived identity and preview handle
//   - [UploadJob] : Upload responses and job lookups (job id, saved/skipped breakdown)
//   - [RenderJob] : Render creation and status payloads (status, progress, download URL)
//   - [RenderOptions] : Slide, crossfade, and fps tunables sent with render requests
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Render] : Render history rows tracking job, status, options, and download location
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
