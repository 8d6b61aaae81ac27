package pagetext

// Page is the raw text of one document page as produced by an extractor.
// Indices are 1-based and follow the source document; gaps are allowed.
type Page struct {
	Index int      // Source page number (1-based)
	Lines []string // Page text, one entry per line, in reading order
}

// Result is a cleaned and segmented page: an ordered sequence of reading
// units ready for speech synthesis. Pages that clean to nothing produce no
// Result at all.
type Result struct {
	Index  int      // Source page number
	Chunks []string // Reading units, in reading order
}
