// internal/matching/config.go
package matching

// DefaultWeights is the category split used whenever the caller supplies no
// usable importance factors.
var DefaultWeights = Weights{
	Academic:  0.40,
	Financial: 0.30,
	Location:  0.15,
	Social:    0.10,
	Future:    0.05,
}

const (
	// NeutralScore is assigned to every category when there is nothing to score against.
	NeutralScore = 75.0

	DefaultMatchLimit  = 20
	DefaultFreeTierCap = 3
	DefaultPageSize    = 20
	DefaultMaxPageSize = 100
	defaultGPAScale    = 4.0
	minReasonDelta     = 5.0
	floatTolerance     = 1e-9
)

type Config struct {
	MatchLimit      int
	FreeTierCap     int
	DefaultPageSize int
	MaxPageSize     int
	Weights         Weights
}

func DefaultConfig() Config {
	return Config{
		MatchLimit:      DefaultMatchLimit,
		FreeTierCap:     DefaultFreeTierCap,
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
		Weights:         DefaultWeights,
	}
}

func (c Config) withDefaults() Config {
	if c.MatchLimit <= 0 {
		c.MatchLimit = DefaultMatchLimit
	}
	if c.FreeTierCap <= 0 {
		c.FreeTierCap = DefaultFreeTierCap
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	c.Weights = c.Weights.normalized(DefaultWeights)
	return c
}
