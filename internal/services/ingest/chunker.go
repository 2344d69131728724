package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/Morningstar-08/second-brain/internal/common"
)

// Chunker splits extracted document text into overlapping word windows.
// Markdown input is first split on headings so a chunk never straddles a
// section boundary unless the section itself exceeds the window.
type Chunker struct {
	size    int
	overlap int
	md      goldmark.Markdown
}

// NewChunker creates a new chunker with the configured window and overlap
func NewChunker(config *common.ChunkingConfig) *Chunker {
	return &Chunker{
		size:    config.Size,
		overlap: config.Overlap,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		),
	}
}

// Chunk splits the text. Markdown content is sectioned by heading first;
// plain text goes straight through the word window. Empty input yields no
// chunks.
func (c *Chunker) Chunk(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var chunks []string
	for _, section := range c.splitSections(content) {
		chunks = append(chunks, c.windowWords(section)...)
	}
	return chunks
}

// splitSections parses the content as markdown and cuts it at headings. Text
// without headings comes back as a single section.
func (c *Chunker) splitSections(content string) []string {
	source := []byte(content)
	doc := c.md.Parser().Parse(text.NewReader(source))

	var boundaries []int
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if node.Kind() != ast.KindHeading {
			continue
		}
		if lines := node.Lines(); lines.Len() > 0 {
			start := lines.At(0).Start
			// Back up to the start of the heading line so the marker stays
			// with its section.
			for start > 0 && source[start-1] != '\n' {
				start--
			}
			boundaries = append(boundaries, start)
		}
	}

	if len(boundaries) == 0 {
		return []string{content}
	}

	var sections []string
	prev := 0
	for _, b := range boundaries {
		if b > prev {
			if s := strings.TrimSpace(string(source[prev:b])); s != "" {
				sections = append(sections, s)
			}
		}
		prev = b
	}
	if s := strings.TrimSpace(string(source[prev:])); s != "" {
		sections = append(sections, s)
	}
	return sections
}

// windowWords slides a fixed-size word window with overlap over one section.
func (c *Chunker) windowWords(section string) []string {
	words := strings.Fields(section)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= c.size {
		return []string{strings.Join(words, " ")}
	}

	step := c.size - c.overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
