package record

// Color is a display color name understood by every front end.
type Color string

const (
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorYellow  Color = "yellow"
	ColorOrange  Color = "orange"
	ColorRed     Color = "red"
	ColorPurple  Color = "purple"
	ColorGray    Color = "gray"
	ColorNeutral Color = "neutral"
)

// Status pairs a status code with its display color.
type Status struct {
	Code  string
	Color Color
}

// Palette is the fixed status lookup table of one entity type. Order is the
// order status buckets are presented in.
type Palette []Status

// Color returns the color for code. Unrecognized codes get ColorNeutral.
func (p Palette) Color(code string) Color {
	code = NormalizeStatus(code)
	for _, s := range p {
		if s.Code == code {
			return s.Color
		}
	}
	return ColorNeutral
}

// Known reports whether code is one of the palette's statuses.
func (p Palette) Known(code string) bool {
	code = NormalizeStatus(code)
	for _, s := range p {
		if s.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the status codes in palette order.
func (p Palette) Codes() []string {
	codes := make([]string, len(p))
	for i, s := range p {
		codes[i] = s.Code
	}
	return codes
}
