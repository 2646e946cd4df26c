package route

// Config controls the cost model and limits of the router.
type Config struct {
	// Cost model
	StepCost       int `yaml:"step_cost"`       // Cost of one unit grid step (default: 100)
	BendPenalty    int `yaml:"bend_penalty"`    // Extra cost per direction change (default: 1)
	OverlapPenalty int `yaml:"overlap_penalty"` // Extra cost for stepping on a foreign-net edge (default: 100 steps)

	// Limits
	MaxExpansions int `yaml:"max_expansions"` // Node expansions before giving up (default: 50000)
	Margin        int `yaml:"margin"`         // Free cells around the endpoints' box searched (default: 20)
}

// DefaultConfig returns a Config with sensible defaults for schematic sheets.
func DefaultConfig() Config {
	return Config{
		StepCost:       100,
		BendPenalty:    1,
		OverlapPenalty: 100 * 100,
		MaxExpansions:  50000,
		Margin:         20,
	}
}

// Validate clamps out-of-range values back to usable ones.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.StepCost < 1 {
		c.StepCost = def.StepCost
	}
	if c.BendPenalty < 0 {
		c.BendPenalty = 0
	}
	// A bend must never be worth a whole step, or bends would trade for length.
	if c.BendPenalty >= c.StepCost {
		c.BendPenalty = c.StepCost - 1
	}
	if c.OverlapPenalty < 0 {
		c.OverlapPenalty = 0
	}
	if c.MaxExpansions < 1 {
		c.MaxExpansions = def.MaxExpansions
	}
	if c.Margin < 1 {
		c.Margin = def.Margin
	}
	return nil
}
