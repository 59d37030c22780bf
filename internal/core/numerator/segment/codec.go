package segment

import (
	"fmt"
	"strings"

	"idforge/internal/core/apperror"
)

// Strip removes the separator from text and remembers how the text was partitioned.
// Empty text yields an empty compact string and no lengths.
func Strip(text, separator string) (string, []int) {
	if text == "" {
		return "", nil
	}
	if separator == "" {
		return text, []int{len(text)}
	}

	parts := strings.Split(text, separator)
	lengths := make([]int, len(parts))
	for i, p := range parts {
		lengths[i] = len(p)
	}
	return strings.Join(parts, ""), lengths
}

// Reinsert slices compact by lengths and joins the pieces with separator.
// It is the exact inverse of Strip.
func Reinsert(compact string, lengths []int, separator string) (string, error) {
	if len(lengths) == 0 {
		if compact == "" {
			return "", nil
		}
		return "", apperror.NewFormatMessage("no segment lengths to reinsert separator into").
			WithDetail("identifier", compact)
	}

	total := 0
	for _, n := range lengths {
		if n < 0 {
			return "", apperror.NewConfiguration(fmt.Sprintf("negative segment length %d", n))
		}
		total += n
	}
	if total != len(compact) {
		return "", apperror.NewConfiguration(
			fmt.Sprintf("segment lengths cover %d characters, identifier has %d", total, len(compact)),
		).WithDetail("identifier", compact)
	}

	items := make([]string, 0, len(lengths))
	start := 0
	for _, n := range lengths {
		items = append(items, compact[start:start+n])
		start += n
	}
	return strings.Join(items, separator), nil
}
