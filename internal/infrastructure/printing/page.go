package printing

import "fmt"

// PaperSize represents the paper size of the generated document
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
	PaperSizeLetter PaperSize = "LETTER" // 216mm x 279mm
)

// IsValid checks if the PaperSize is a known value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter:
		return true
	}
	return false
}

func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 216, 279
	default:
		return 210, 297
	}
}

// ParsePaperSize maps a configuration value to a PaperSize
func ParsePaperSize(s string) (PaperSize, error) {
	p := PaperSize(s)
	if s == "" {
		return PaperSizeA4, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("unsupported paper size %q", s)
	}
	return p, nil
}

// Orientation represents the page orientation
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a known value
func (o Orientation) IsValid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// UniformMargins returns equal margins on all sides
func UniformMargins(mm int) Margins {
	return Margins{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// ReportMargins is roughly 50pt on every side
func ReportMargins() Margins {
	return UniformMargins(18)
}

// PageSetup groups the physical page parameters of a render
type PageSetup struct {
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
}

// DefaultPageSetup is A4 portrait with report margins
func DefaultPageSetup() PageSetup {
	return PageSetup{
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     ReportMargins(),
	}
}
