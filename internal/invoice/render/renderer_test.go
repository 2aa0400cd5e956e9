package render

import (
	"fmt"
	"testing"

	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

func sumWidths(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total
}

func TestColumnWidthsFillGrid(t *testing.T) {
	widths := columnWidths([]domain.ColumnSpec{
		{FieldName: "candidate_name"},
		{FieldName: "amount"},
	})
	assert.Equal(t, gridWidth-1, sumWidths(widths))

	weighted := columnWidths([]domain.ColumnSpec{
		{FieldName: "candidate_name", Width: 3},
		{FieldName: "doj", Width: 1},
		{FieldName: "amount", Width: 1},
	})
	assert.Equal(t, gridWidth-1, sumWidths(weighted))
	assert.Greater(t, weighted[0], weighted[1])
}

func TestColumnWidthsNeverOversubscribe(t *testing.T) {
	// A heavily skewed weight floors the rest to zero; the one-unit
	// bump must not push the total past the grid.
	skewed := []domain.ColumnSpec{{FieldName: "field_1", Width: 100}}
	for i := 2; i <= 11; i++ {
		skewed = append(skewed, domain.ColumnSpec{FieldName: fmt.Sprintf("field_%d", i), Width: 1})
	}
	widths := columnWidths(skewed)
	assert.LessOrEqual(t, sumWidths(widths), gridWidth-1)
	for _, w := range widths {
		assert.GreaterOrEqual(t, w, 1)
	}
}
