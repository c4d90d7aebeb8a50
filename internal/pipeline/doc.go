// Package pipeline drives each discovered source video through the fixed
// stage sequence: subtitles, slowdown, music mix, outro, cleanup. Items are
// processed strictly one at a time; a failing item never stops the batch.
package pipeline
