package components

import "strings"

// Gender of a tribesman.
type Gender uint8

const (
	GenderNone Gender = iota
	GenderFemale
	GenderMale
)

// String returns the display name for a Gender.
func (g Gender) String() string {
	names := GenderNames()
	if int(g) < len(names) {
		return names[g]
	}
	return "unknown"
}

// GenderNames returns the names for all genders.
// The order matches the Gender constants.
func GenderNames() []string {
	return []string{"none", "female", "male"}
}

// ParseGender maps a name to a Gender, case-insensitively. Unknown names are GenderNone.
func ParseGender(name string) Gender {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range GenderNames() {
		if n == name {
			return Gender(i)
		}
	}
	return GenderNone
}

// TaskKind is the activity a member was told to perform by a perception.
type TaskKind uint8

const (
	TaskIdle TaskKind = iota
	TaskWork
	TaskGather
	TaskMine
	TaskExplore
	TaskBreed
	TaskAttack
)

// String returns the display name for a TaskKind.
func (k TaskKind) String() string {
	names := TaskKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// TaskKindNames returns the display names for all task kinds.
// The order matches the TaskKind constants.
func TaskKindNames() []string {
	return []string{"Idle", "Work", "Gather", "Mine", "Explore", "Breed", "Attack"}
}

// TaskKindCount returns the number of task kinds.
func TaskKindCount() int {
	return len(TaskKindNames())
}
