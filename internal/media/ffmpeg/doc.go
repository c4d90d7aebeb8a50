// Package ffmpeg wraps the ffmpeg binary behind the transcoding operations the
// pipeline needs: audio extraction, timestamp scaling, subtitle burn-in,
// music mixing, and concatenation. Every write goes to a temporary sibling of
// the destination and is renamed into place only on success, so a failed
// invocation never leaves a partially written output.
package ffmpeg
