// Package subtitles composes the dual-track ASS documents the pipeline burns
// into videos: one dialogue event per track per transcript segment, both
// sharing the segment's timing.
package subtitles
