package tribe

import (
	"strconv"
	"strings"
)

// Reaction clauses of the NPC-type descriptor. The agent-behavior system
// parses these strings, so they must not change.
const (
	descriptorParent = "AbstractTribesman"

	reactWarlike = `<react event="attack" behavior="aggressive_meet" delta="150" />`

	reactPacifist = `<react event="player nearby" behavior="peace_meet" delta="100" />` + "\n" +
		`<react event="attack" behavior="normal_attacked" delta="150" />`

	reactCoward = `<react event="player nearby" behavior="peace_meet" delta="100" />` + "\n" +
		`<react event="attack" behavior="coward_attacked" delta="100" />` + "\n"

	reactUnited = `<react event="attack" behavior="united_attacked" delta="100" />`

	reactDiurnal = `<react event="time" value="22,0,,," behavior="GoToSleep" />` + "\n" +
		`<react event="time" value="6,0,,," behavior="do nothing" />`

	reactNocturnal = `<react event="time" value="8,0,,," behavior="GoToSleep" />` + "\n" +
		`<react event="time" value="18,0,,," behavior="do nothing" />`
)

// Descriptor renders the NPC type every member of the tribe uses.
func (c *Configuration) Descriptor() (string, error) {
	var sb strings.Builder
	sb.WriteString(`<npctype name="tribe_`)
	sb.WriteString(strconv.Itoa(c.TribeID))
	sb.WriteString(`" parent="` + descriptorParent + `">`)

	switch c.Aggressivity {
	case "warlike":
		sb.WriteString(reactWarlike)
	case "pacifist":
		sb.WriteString(reactPacifist)
	case "coward":
		sb.WriteString(reactCoward)
	default:
		return "", &ConfigError{
			Tribe:   c.TribeID,
			Recipe:  c.recipeName(),
			Keyword: StatAggressivity,
			Value:   c.Aggressivity,
			Err:     ErrUnknownTrait,
		}
	}

	if c.Unity != "cowards" {
		sb.WriteString(reactUnited)
	}

	switch c.SleepPeriod {
	case "diurnal":
		sb.WriteString(reactDiurnal)
	case "nocturnal":
		sb.WriteString(reactNocturnal)
	}

	sb.WriteString("</npctype>")
	return sb.String(), nil
}

func (c *Configuration) recipeName() string {
	if c.TribalRecipe == nil {
		return ""
	}
	return c.TribalRecipe.Name
}
