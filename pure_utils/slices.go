package pure_utils

import (
	"github.com/hashicorp/go-set/v2"
)

func ContainsSameElements[T comparable](a, b []T) bool {
	return set.From(a).Equal(set.From(b))
}

// Deduplicate returns the distinct elements of input, in order of first appearance
func Deduplicate[T comparable](input []T) []T {
	seen := set.New[T](len(input))
	output := make([]T, 0, len(input))
	for _, item := range input {
		if seen.Insert(item) {
			output = append(output, item)
		}
	}
	return output
}
