package whisper

// Config captures runtime settings for transcription.
type Config struct {
	// Model is the faster-whisper model to use (e.g., "large-v3").
	Model string
	// BeamSize fixes the beam-search width so output stays deterministic for
	// identical model weights and audio.
	BeamSize int
	// Language is the expected spoken language; empty lets the model detect.
	Language string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
}

// Transcription constants.
const (
	DefaultModel    = "large-v3"
	DefaultBeamSize = 5
	OutputFormat    = "json"
	CPUDevice       = "cpu"
	CUDADevice      = "cuda"
	CPUComputeType  = "int8"
)

// Command names for external tools.
const (
	UVXCommand      = "uvx"
	TranscriberTool = "whisper-ctranslate2"
)
