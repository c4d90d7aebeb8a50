package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.StagingDir == c.Paths.OutputDir {
		return errors.New("paths.staging_dir must differ from paths.output_dir")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.SlowdownFraction < 0 || c.Pipeline.SlowdownFraction >= 1 {
		return errors.New("pipeline.slowdown_fraction must be in [0, 1)")
	}
	if c.Pipeline.MusicGainDB > 0 {
		return errors.New("pipeline.music_gain_db must be zero or negative")
	}
	if len(c.Pipeline.VideoExtensions) == 0 {
		return errors.New("pipeline.video_extensions must not be empty")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	if c.Translate.BatchSize <= 0 {
		return errors.New("translate.batch_size must be positive")
	}
	if c.Translate.TimeoutSeconds <= 0 {
		return errors.New("translate.timeout_seconds must be positive (seconds)")
	}
	if strings.TrimSpace(c.Translate.BaseURL) == "" {
		return errors.New("translate.base_url must be set")
	}
	if strings.TrimSpace(c.Translate.Model) == "" {
		return fmt.Errorf("translate.model must be set")
	}
	return nil
}
