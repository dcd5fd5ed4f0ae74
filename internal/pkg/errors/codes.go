package errors

import "net/http"

var (
	ErrInvalidFilePath = New(
		"INVALID_FILE_PATH",
		"Invalid or unsupported image file",
		http.StatusBadRequest,
	)

	ErrInvalidOutputDir = New(
		"INVALID_OUTPUT_DIR",
		"Output directory does not exist",
		http.StatusBadRequest,
	)

	ErrUnsupportedFormat = New(
		"UNSUPPORTED_FORMAT",
		"Unsupported output format",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidProvider = New(
		"INVALID_PROVIDER",
		"Unknown geocoding provider",
		http.StatusBadRequest,
	)

	ErrProviderUnavailable = New(
		"PROVIDER_UNAVAILABLE",
		"No API key configured for provider",
		http.StatusBadRequest,
	)

	ErrRenderFailed = New(
		"RENDER_FAILED",
		"Watermark rendering failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
