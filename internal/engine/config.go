package engine

// Config carries the startup settings named in §6.7's CLI flags.
type Config struct {
	DataDir        string
	InitialPart    int
	SkipProtection bool
}

const (
	defaultDataDir = "./share/another-world"
	defaultPart    = 1
)

// Defaults fills zero-valued fields with the CLI's documented defaults.
func (c *Config) Defaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.InitialPart == 0 {
		c.InitialPart = defaultPart
	}
}
