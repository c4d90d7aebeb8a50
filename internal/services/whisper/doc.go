// Package whisper drives the faster-whisper CLI for speech recognition and
// parses its JSON transcript output into ordered, timed segments.
package whisper
