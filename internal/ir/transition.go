package ir

// Transition marks a playlist item whose segment timing is clamped to the
// entry and exit markers of the segment it plays.
type Transition struct {
	// PlayBefore plays the audio before the entry marker. Only the first
	// segment of a playlist does that.
	PlayBefore bool
}

// Stinger is a one-shot segment played when a trigger fires.
type Stinger struct {
	TriggerID uint32
	SegmentID uint32
}
