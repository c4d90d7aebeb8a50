// Package translate wraps the Gemini generateContent API for line-for-line
// text translation. The client guarantees positional 1:1 correspondence
// between input and output even under partial API failure: affected lines
// degrade to empty strings, never a length mismatch.
package translate
