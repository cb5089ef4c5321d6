package model

// PositionSample is the per tick input of the timer.
type PositionSample struct {
	Pos Vec3 `json:"pos"`
	// Unavailable is set when there is no world (e.g. unloaded) for this tick
	Unavailable bool `json:"unavailable,omitempty"`
	// Paused ticks are ignored completely
	Paused bool `json:"paused,omitempty"`
}

func SampleAt(x, y, z float64) PositionSample {
	return PositionSample{Pos: Vec3{X: x, Y: y, Z: z}}
}
