package preflight

import (
	"context"

	"kielo/internal/config"
	"kielo/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minimumStagingBytes is the free space required in the staging directory;
// slowed intermediates are full re-encodes of the largest source.
const minimumStagingBytes = 1 << 30

// RunAll executes every applicable preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Source directory", cfg.Paths.SourceDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Subtitles directory", cfg.Paths.SubtitlesDir),
		CheckDirectoryAccess("Assets directory", cfg.Paths.AssetsDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, minimumStagingBytes),
		CheckTranslationAPI(ctx, cfg),
	}
	return results
}

// CheckSystemDeps evaluates the external binaries the stages shell out to.
// Both the status command and the process command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for every transcoding stage",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media duration probing",
		},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required to run the speech-recognition tool",
		},
	})
}
