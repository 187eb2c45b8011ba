package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrJobNotFound        = fmt.Errorf("job not found")
	ErrRenderNotFound     = fmt.Errorf("render not found")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Staging errors
	ErrStagingLimit  = fmt.Errorf("staging limit reached")
	ErrNothingStaged = fmt.Errorf("no files staged")
	ErrNotAnImage    = fmt.Errorf("not an image")
	ErrDuplicateFile = fmt.Errorf("file already staged")

	// Orchestration errors
	ErrUploadInFlight = fmt.Errorf("upload already in progress")
	ErrNoUploadJob    = fmt.Errorf("no upload job")
	ErrRenderFailed   = fmt.Errorf("render failed")
	ErrSuperseded     = fmt.Errorf("operation superseded")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
