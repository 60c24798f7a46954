package components

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float32
}
