// Package preflight provides readiness checks for the directories, disk
// space, external binaries, and remote services a batch run depends on.
//
// The CLI "kielo status" command renders these as a table; "kielo process"
// runs them before taking the batch lock so a doomed run fails early instead
// of half way through a transcode.
package preflight
