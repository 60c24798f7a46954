package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the state of every tribe at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`
	Tick    int32 `json:"tick"`

	Tribes []TribeState `json:"tribes"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// TribeState holds one tribe's ledgers, members and pending work.
type TribeState struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sector  string `json:"sector"`
	NPCType string `json:"npc_type"`

	Resources map[string]int    `json:"resources"`
	Items     map[string]int    `json:"items"`
	Buildings map[string]int    `json:"buildings"`
	Buffers   map[string]string `json:"buffers,omitempty"`
	Knowledge []string          `json:"knowledge"`

	Memories []MemoryState `json:"memories"`
	Members  []MemberState `json:"members"`
	Pending  []NodeState   `json:"pending"`
	Cyclic   int           `json:"cyclic"`
}

// MemoryState is one remembered location.
type MemoryState struct {
	Name   string     `json:"name"`
	Sector string     `json:"sector"`
	Pos    [3]float32 `json:"pos"`
	Radius float32    `json:"radius"`
}

// MemberState is one tribe member.
type MemberState struct {
	Agent         uint64     `json:"agent"`
	Category      string     `json:"category"`
	Gender        string     `json:"gender"`
	Pos           [3]float32 `json:"pos"`
	Task          string     `json:"task"`
	TaskBuffer    string     `json:"task_buffer,omitempty"`
	TaskRemaining float32    `json:"task_remaining,omitempty"`
}

// NodeState is one node of the pending-recipe tree.
type NodeState struct {
	ID              string  `json:"id"`
	Parent          string  `json:"parent,omitempty"`
	Recipe          string  `json:"recipe"`
	Depth           int     `json:"depth"`
	Mode            string  `json:"mode"`
	NextRequirement int     `json:"next_requirement"`
	ResumeStep      int     `json:"resume_step"`
	WaitUntil       float64 `json:"wait_until,omitempty"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%d_%s", snapshot.Tick, snapshot.Bookmark.Tribe, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
