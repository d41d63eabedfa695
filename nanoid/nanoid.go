// Package nanoid generates short unique identifiers for audit events and
// other records that need compact, URL-safe IDs.
package nanoid

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const defaultSize = 16

func getSize(l ...int) int {
	size := defaultSize
	if len(l) > 0 {
		size = l[0]
	}
	return size
}

// Must generate optional length nanoid
func Must(l ...int) string {
	size := getSize(l...)
	return gonanoid.Must(size)
}
