// Package services provides shared error classification and context helpers
// for the external engines the pipeline drives (ffmpeg, the transcriber, the
// translation API).
package services
