package extractor

import (
	"bufio"
	"io"
	"strings"

	"github.com/nkotake/seion/internal/pagetext"
)

// TextExtractor handles plain text files. Form feeds act as page
// separators; a file without them is a single page.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) ([]pagetext.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var texts []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		for {
			idx := strings.IndexByte(line, '\f')
			if idx < 0 {
				break
			}
			current.WriteString(line[:idx])
			texts = append(texts, current.String())
			current.Reset()
			line = line[idx+1:]
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	texts = append(texts, current.String())

	return pagesFromTexts(texts), nil
}
