package tribe

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/recipe"
)

var (
	// ErrUnknownStat is returned for a tribal recipe keyword that is not a tribe stat.
	ErrUnknownStat = errors.New("unknown tribe stat")
	// ErrUnknownTrait is returned when a policy value has no descriptor template.
	ErrUnknownTrait = errors.New("unknown trait")
)

// Policy keywords accepted in a tribal recipe and by SetPolicy.
const (
	StatAggressivity = "aggressivity"
	StatBrain        = "brain"
	StatGrowth       = "growth"
	StatUnity        = "unity"
	StatSleepPeriod  = "sleepPeriod"

	keywordLoadRecipe = "loadRecipe"
)

// ConfigError reports a tribal recipe that cannot be turned into a Configuration.
type ConfigError struct {
	Tribe   int
	Recipe  string
	Keyword string
	Value   string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("tribe %d (%s): %s %q: %v", e.Tribe, e.Recipe, e.Keyword, e.Value, e.Err)
	}
	return fmt.Sprintf("tribe %d (%s): %q: %v", e.Tribe, e.Recipe, e.Keyword, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RecipeLoad is one recipe a tribe is configured to pursue.
type RecipeLoad struct {
	Name string
	Mode engine.ResolutionMode
}

// Configuration holds the tribe policy derived from its tribal recipe.
// Only the five policy fields may be changed after derivation, through SetPolicy.
type Configuration struct {
	TribeID      int
	TribalRecipe *recipe.Recipe

	Aggressivity string
	Brain        string
	Growth       string
	Unity        string
	SleepPeriod  string

	Recipes []RecipeLoad
}

// ParseConfiguration derives a tribe's Configuration from its tribal recipe.
// Each algorithm entry is either a policy keyword with one value or
// loadRecipe(name[,distributed]). Anything else fails the whole derivation.
func ParseConfiguration(tribeID int, tribal *recipe.Recipe) (*Configuration, error) {
	c := &Configuration{TribeID: tribeID, TribalRecipe: tribal}

	for _, step := range tribal.Algorithm {
		keyword, args := recipe.SplitCall(step.Text)
		value := ""
		if len(args) > 0 {
			value = args[0]
		}

		if keyword == keywordLoadRecipe {
			if value == "" {
				return nil, &ConfigError{Tribe: tribeID, Recipe: tribal.Name, Keyword: step.Text, Err: recipe.ErrEmptyName}
			}
			mode := engine.Concentrated
			if len(args) > 1 {
				mode = engine.ParseMode(args[1])
			}
			c.Recipes = append(c.Recipes, RecipeLoad{Name: value, Mode: mode})
			continue
		}

		if err := c.SetPolicy(keyword, value); err != nil {
			return nil, &ConfigError{Tribe: tribeID, Recipe: tribal.Name, Keyword: keyword, Err: err}
		}
	}

	return c, nil
}

// SetPolicy overrides one policy field.
func (c *Configuration) SetPolicy(keyword, value string) error {
	switch keyword {
	case StatAggressivity:
		c.Aggressivity = value
	case StatBrain:
		c.Brain = value
	case StatGrowth:
		c.Growth = value
	case StatUnity:
		c.Unity = value
	case StatSleepPeriod:
		c.SleepPeriod = value
	default:
		return ErrUnknownStat
	}
	return nil
}

// Policy returns the value of one policy field.
func (c *Configuration) Policy(keyword string) (string, bool) {
	switch keyword {
	case StatAggressivity:
		return c.Aggressivity, true
	case StatBrain:
		return c.Brain, true
	case StatGrowth:
		return c.Growth, true
	case StatUnity:
		return c.Unity, true
	case StatSleepPeriod:
		return c.SleepPeriod, true
	}
	return "", false
}
