package backend

// Config carries the window/audio settings the ebiten backend needs,
// following the teacher's ui.Config / Defaults() pattern.
type Config struct {
	Title      string
	Scale      int
	SampleRate int
}

const (
	defaultTitle      = "Another World"
	defaultScale      = 3
	defaultSampleRate = 44100
)

// Defaults fills zero-valued fields with the shipped defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Scale <= 0 {
		c.Scale = defaultScale
	}
	if c.SampleRate <= 0 {
		c.SampleRate = defaultSampleRate
	}
}
