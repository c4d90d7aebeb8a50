// Package logging configures slog for the pipeline and provides typed
// attribute helpers plus standardized field keys so stage logs stay
// machine-filterable.
package logging
