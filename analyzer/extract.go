package analyzer

import (
	"errors"
	"strings"
)

const (
	diffOpenMarker  = "```bash\n"
	diffCloseMarker = "\n```"
)

// ErrNoDiffBlock is returned when a reply carries no complete fenced bash block.
var ErrNoDiffBlock = errors.New("model reply contains no fenced bash diff block")

// ExtractDiff returns the text between the first "```bash" fence and the next
// closing fence. A missing open or close fence is an error; a partial block is
// never returned.
func ExtractDiff(reply string) (string, error) {
	_, rest, found := strings.Cut(reply, diffOpenMarker)
	if !found {
		return "", ErrNoDiffBlock
	}
	diff, _, found := strings.Cut(rest, diffCloseMarker)
	if !found {
		return "", ErrNoDiffBlock
	}
	return diff, nil
}
