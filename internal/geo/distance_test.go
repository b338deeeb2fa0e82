package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePoint(t *testing.T) {
	d := Distance(40.7128, -74.0060, 40.7128, -74.0060)
	assert.InDelta(t, 0, d, 0.001)
}

func TestDistance_NewYorkToPhiladelphia(t *testing.T) {
	// NYC -> Philadelphia is roughly 80 miles great-circle.
	d := Distance(40.7128, -74.0060, 39.9526, -75.1652)
	assert.InDelta(t, 80.5, d, 2.0)
}

func TestDistance_Symmetric(t *testing.T) {
	d1 := Distance(34.0522, -118.2437, 36.1699, -115.1398)
	d2 := Distance(36.1699, -115.1398, 34.0522, -118.2437)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistance_ShortHop(t *testing.T) {
	// Two points ~0.1 degrees of latitude apart: about 6.9 miles.
	d := Distance(40.0, -74.0, 40.1, -74.0)
	assert.InDelta(t, 6.9, d, 0.2)
}
