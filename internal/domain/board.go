package domain

import (
	"fmt"
	"math"
)

// BoardState maps a cell key ("row:col") to the color painted there.
type BoardState map[string]string

// CellSize is the edge of a painted cell in degrees.
const CellSize = 0.0001

// CellKey returns the key of the cell containing (lat, lng).
func CellKey(lat, lng float64) string {
	row := int64(math.Floor(lat / CellSize))
	col := int64(math.Floor(lng / CellSize))
	return fmt.Sprintf("%d:%d", row, col)
}
