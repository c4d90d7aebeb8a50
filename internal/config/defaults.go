package config

const (
	defaultSourceDir    = "source"
	defaultOutputDir    = "output"
	defaultSubtitlesDir = "subtitles"
	defaultStagingDir   = "staging"
	defaultAssetsDir    = "assets"
	defaultLogDir       = "logs"

	defaultTranscribeModel    = "large-v3"
	defaultTranscribeBeamSize = 5
	defaultTranscribeLanguage = "fi"

	defaultTranslateBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultTranslateModel          = "gemini-2.5-flash"
	defaultTranslateBatchSize      = 32
	defaultTranslateSource         = "fi"
	defaultTranslateTarget         = "en"
	defaultTranslateTimeoutSeconds = 60

	defaultSlowdownFraction = 0.20
	defaultMusicGainDB      = -15.0
	defaultMusicFile        = "background_music.mp3"
	defaultOutroFile        = "outro.mp4"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultVideoExtensions() []string {
	return []string{".mp4", ".mov", ".avi", ".mkv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:    defaultSourceDir,
			OutputDir:    defaultOutputDir,
			SubtitlesDir: defaultSubtitlesDir,
			StagingDir:   defaultStagingDir,
			AssetsDir:    defaultAssetsDir,
			LogDir:       defaultLogDir,
		},
		Transcribe: Transcribe{
			Model:    defaultTranscribeModel,
			BeamSize: defaultTranscribeBeamSize,
			Language: defaultTranscribeLanguage,
		},
		Translate: Translate{
			BaseURL:        defaultTranslateBaseURL,
			Model:          defaultTranslateModel,
			BatchSize:      defaultTranslateBatchSize,
			SourceLanguage: defaultTranslateSource,
			TargetLanguage: defaultTranslateTarget,
			TimeoutSeconds: defaultTranslateTimeoutSeconds,
		},
		Pipeline: Pipeline{
			SlowdownFraction: defaultSlowdownFraction,
			MusicGainDB:      defaultMusicGainDB,
			MusicFile:        defaultMusicFile,
			OutroFile:        defaultOutroFile,
			VideoExtensions:  defaultVideoExtensions(),
			AssumeReuse:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
