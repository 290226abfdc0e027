package lang

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
)

// chineseSegmenter loads the embedded gse dictionary on first use. The
// segmenter is read-only afterwards and shared by all callers.
var chineseSegmenter = sync.OnceValues(func() (*gse.Segmenter, error) {
	seg := new(gse.Segmenter)
	if err := seg.LoadDictEmbed(); err != nil {
		return nil, fmt.Errorf("load chinese dictionary: %w", err)
	}
	return seg, nil
})

// segmentChinese runs dictionary segmentation with HMM recognition of
// out-of-vocabulary words. gse attaches trailing whitespace to punctuation,
// so each whitespace character is split off into a piece of its own.
func segmentChinese(text string) ([]string, error) {
	seg, err := chineseSegmenter()
	if err != nil {
		return nil, err
	}
	cut := seg.Cut(text, true)
	pieces := make([]string, 0, len(cut))
	for _, p := range cut {
		pieces = appendSplitSpaces(pieces, p)
	}
	return pieces, nil
}

// appendSplitSpaces appends p to pieces with every whitespace character
// broken out as its own piece. CR LF stays one piece.
func appendSplitSpaces(pieces []string, p string) []string {
	start := 0
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRuneInString(p[i:])
		if !unicode.IsSpace(r) {
			i += size
			continue
		}
		if start < i {
			pieces = append(pieces, p[start:i])
		}
		if strings.HasPrefix(p[i:], "\r\n") {
			size = 2
		}
		pieces = append(pieces, p[i:i+size])
		i += size
		start = i
	}
	if start < len(p) {
		pieces = append(pieces, p[start:])
	}
	return pieces
}
