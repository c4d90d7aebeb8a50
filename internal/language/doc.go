// Package language normalizes language codes reported by the transcriber and
// resolves the display names used for subtitle style labels.
package language
