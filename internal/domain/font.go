package domain

// FontEntry - семейство шрифтов, найденное в системе
type FontEntry struct {
	// Family is the name the glyph renderer matches reliably (ASCII when available).
	Family string `json:"family"`
	// DisplayName prefers a localized (CJK) label.
	DisplayName string `json:"display_name"`
	// Path is a font file of the family, empty when discovery did not learn it.
	Path string `json:"path,omitempty"`
}
