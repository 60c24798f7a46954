package recipe

import "strings"

// Opcode identifies one interpreter operation. It is decided once when a
// recipe row is loaded; arguments are only split after placeholder substitution.
type Opcode uint8

const (
	OpUnknown Opcode = iota
	OpAlterResource
	OpLoadLocation
	OpGoWork
	OpWait
	OpLoadRecipe
	OpLoadCyclicRecipe
	OpLocateMemory
	OpLocateResource
	OpLocateBuildingSpot
	OpAddKnowledge
	OpReserveSpot
	OpAddBuilding
	OpAttack
	OpGather
	OpMine
	OpExplore
	OpMate
	OpSelect
	OpSetBuffer
	OpSetAmountBuffer
	OpBogus

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	OpUnknown:            "",
	OpAlterResource:      "alterResource",
	OpLoadLocation:       "loadLocation",
	OpGoWork:             "goWork",
	OpWait:               "wait",
	OpLoadRecipe:         "loadRecipe",
	OpLoadCyclicRecipe:   "loadCyclicRecipe",
	OpLocateMemory:       "locateMemory",
	OpLocateResource:     "locateResource",
	OpLocateBuildingSpot: "locateBuildingSpot",
	OpAddKnowledge:       "addKnowledge",
	OpReserveSpot:        "reserveSpot",
	OpAddBuilding:        "addBuilding",
	OpAttack:             "attack",
	OpGather:             "gather",
	OpMine:               "mine",
	OpExplore:            "explore",
	OpMate:               "mate",
	OpSelect:             "select",
	OpSetBuffer:          "setBuffer",
	OpSetAmountBuffer:    "setAmountBuffer",
	OpBogus:              "bogus",
}

// String returns the opcode's name as written in recipes.
func (o Opcode) String() string {
	if o < numOpcodes && o != OpUnknown {
		return opcodeNames[o]
	}
	return "unknown"
}

// LookupOpcode returns the opcode for a call name, or OpUnknown.
func LookupOpcode(name string) Opcode {
	for i := OpUnknown + 1; i < numOpcodes; i++ {
		if opcodeNames[i] == name {
			return i
		}
	}
	return OpUnknown
}

// OpcodeNames lists every known opcode name in declaration order.
func OpcodeNames() []string {
	names := make([]string, 0, numOpcodes-1)
	for i := OpUnknown + 1; i < numOpcodes; i++ {
		names = append(names, opcodeNames[i])
	}
	return names
}

// Step is one algorithm entry: the raw call text and its classified opcode.
type Step struct {
	Text string
	Op   Opcode
}

// NewStep classifies a raw call string.
func NewStep(text string) Step {
	name, _ := SplitCall(text)
	return Step{Text: text, Op: LookupOpcode(name)}
}

// Name returns the call name of the step.
func (s Step) Name() string {
	name, _ := SplitCall(s.Text)
	return name
}

// SplitCall splits `name(arg1,arg2,...)` into the name and its non-empty
// arguments. Whitespace around the name and each argument is trimmed.
func SplitCall(call string) (string, []string) {
	name, rest, found := strings.Cut(call, "(")
	name = strings.TrimSpace(name)
	if !found {
		return name, nil
	}
	rest, _, _ = strings.Cut(rest, ")")

	var args []string
	for _, arg := range strings.Split(rest, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		args = append(args, arg)
	}
	return name, args
}
