package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/rulebase"
)

func TestAxis(t *testing.T) {
	rb := rulebase.Default()
	assert.Equal(t, []float64{0, 5, 10}, axis(rb.Inputs[0], 3))
	assert.Equal(t, []float64{0, 1}, axis(rb.Inputs[3], 3), "capability sets are single points")
	assert.Equal(t, []float64{25}, axis(rb.Inputs[2], 1))
}

func TestGrid(t *testing.T) {
	points := grid(rulebase.Default(), 3)
	require.Len(t, points, 3*3*3*2)
	assert.Equal(t, []float64{0, 0, 0, 0}, points[0])
	assert.Equal(t, []float64{0, 0, 0, 1}, points[1])
	assert.Equal(t, []float64{10, 25, 50, 1}, points[len(points)-1])
}

func TestSweep(t *testing.T) {
	engine, err := fuzzy.NewEngine(rulebase.Default(), fuzzy.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := sweep(context.Background(), engine, 3, 2, &buf)
	require.NoError(t, err)
	assert.Equal(t, 54, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, n+1)
	assert.Equal(t, []string{"Load History", "Distance to Task", "Total Distance Travelled", "Capability", "Suitability", "status"}, rows[0])

	// 0,0,0,1 is the most suitable corner.
	assert.Equal(t, []string{"0", "0", "0", "1"}, rows[2][:4])
	v, err := strconv.ParseFloat(rows[2][4], 64)
	require.NoError(t, err)
	assert.InDelta(t, 9.309, v, 0.01)
	assert.Equal(t, "computed", rows[2][5])

	for _, row := range rows[1:] {
		if row[3] == "0" {
			assert.Equal(t, "0.000000", row[4], "no capability match is unacceptable")
		}
	}
}
