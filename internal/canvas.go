package internal

// Canonical canvas grid. Clients may render at any resolution but stroke
// coordinates are exchanged in grid units.
const (
	CanvasWidth  = 64
	CanvasHeight = 36
)

type StrokeType string

const (
	StrokeDraw  StrokeType = "draw"
	StrokeErase StrokeType = "erase"
	StrokeClear StrokeType = "clear"
)

type StrokePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StrokeBatch is one incremental drawing update relayed live from the drawer to
// the rest of the room during the drawing phase.
type StrokeBatch struct {
	Type      StrokeType    `json:"type"`
	Color     string        `json:"color,omitempty"`
	Size      int           `json:"size,omitempty"`
	Points    []StrokePoint `json:"points,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// ClampToCanvas drops points outside the canonical grid and reports whether
// anything drawable is left.
func (b *StrokeBatch) ClampToCanvas() bool {
	if b.Type == StrokeClear {
		return true
	}
	kept := b.Points[:0]
	for _, p := range b.Points {
		if p.X < 0 || p.X >= CanvasWidth || p.Y < 0 || p.Y >= CanvasHeight {
			continue
		}
		kept = append(kept, p)
	}
	b.Points = kept
	return len(b.Points) > 0
}
