package tree

// Style carries drawing hints for an external renderer
type Style struct {
	Radius    float64 `json:"radius"`     // Node circle radius
	LinkWidth float64 `json:"link_width"` // Width of the link from the parent
	LinkDash  string  `json:"link_dash"`  // SVG dash array of the link from the parent
	Color     string  `json:"color"`      // Fill colour of the node
}

// HighlightColor strokes links on the highlight path
const HighlightColor = "#ff6600"

const neutralColor = "#999999"

// palette: teacher behaviours warm, student behaviours cool, silence grey
var palette = map[string]string{
	"TQ": "#FF8C00",
	"TL": "#FFB347",
	"TF": "#4ECDC4",
	"TI": "#95E1D3",
	"TB": "#A8A8A8",
	"TP": "#C0C0C0",
	"SS": "#5B8DEE",
	"SD": "#7FB3D5",
	"CS": "#E0E0E0",
	"TO": "#DDA0DD",
}

// NodeRadius sizes a node by its aggregated count
func NodeRadius(count int) float64 {
	switch {
	case count >= 10:
		return 28
	case count >= 4:
		return 18
	default:
		return 10
	}
}

// LinkWidth sizes a link by the count of its target node
func LinkWidth(count int) float64 {
	switch {
	case count >= 10:
		return 5
	case count >= 6:
		return 3.5
	case count >= 3:
		return 2
	default:
		return 1
	}
}

// LinkDash picks a dash pattern from the target's score: solid for high
// quality, short dashes for medium or unknown, long dashes for low.
func LinkDash(avgScore *float64) string {
	switch {
	case avgScore == nil:
		return "4,2"
	case *avgScore >= 0.8:
		return "0"
	case *avgScore >= 0.5:
		return "4,2"
	default:
		return "8,4"
	}
}

// ColorFor returns the palette colour of abbr
func ColorFor(abbr string) string {
	if c, ok := palette[abbr]; ok {
		return c
	}
	return neutralColor
}

func styleFor(n *Node, highlighted bool) Style {
	s := Style{
		Radius:    NodeRadius(n.Count),
		LinkWidth: LinkWidth(n.Count),
		LinkDash:  LinkDash(n.AvgScore),
		Color:     ColorFor(n.Abbr),
	}
	if highlighted {
		s.LinkWidth++
	}
	return s
}
