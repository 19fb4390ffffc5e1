package domain

import "strings"

// Style describes how the header row of a workbook is rendered.
// Colors are six digit RGB hex strings, with or without a leading '#'.
type Style struct {
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	FontColor string  `json:"font_color,omitempty" validate:"omitempty,hexcolor|len=6"`
	FillColor string  `json:"fill_color,omitempty" validate:"omitempty,hexcolor|len=6"`
	FontSize  float64 `json:"font_size,omitempty" validate:"omitempty,gt=0,lte=409"`
}

// NewStyle returns an empty style
func NewStyle() *Style { return &Style{} }

func (s *Style) SetBold() *Style {
	s.Bold = true
	return s
}

func (s *Style) SetItalic() *Style {
	s.Italic = true
	return s
}

func (s *Style) SetFontColor(hex string) *Style {
	s.FontColor = hex
	return s
}

func (s *Style) SetFillColor(hex string) *Style {
	s.FillColor = hex
	return s
}

func (s *Style) SetFontSize(size float64) *Style {
	s.FontSize = size
	return s
}

// HexColor normalizes a color to upper-case RRGGBB without '#'
func HexColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}
