//nolint:thelper,whitespace,lll,funlen,gocritic,dupl // ok for tests
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox_Contains(t *testing.T) {
	box := Box{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	tests := []struct {
		name string
		p    Vec3
		want bool
	}{
		{name: "min corner inclusive", p: Vec3{0, 0, 0}, want: true},
		{name: "inside", p: Vec3{0.5, 0.5, 0.5}, want: true},
		{name: "max x exclusive", p: Vec3{1, 0.5, 0.5}, want: false},
		{name: "max y exclusive", p: Vec3{0.5, 1, 0.5}, want: false},
		{name: "max z exclusive", p: Vec3{0.5, 0.5, 1}, want: false},
		{name: "just below max", p: Vec3{0.999999, 0.999999, 0.999999}, want: true},
		{name: "below min", p: Vec3{-0.0001, 0, 0}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.p))
		})
	}
}

func TestNewBox(t *testing.T) {
	b := NewBox(Vec3{3, -1, 5}, Vec3{1, 2, 0})
	assert.Equal(t, Box{Min: Vec3{1, -1, 0}, Max: Vec3{3, 2, 5}}, b)
	assert.InDelta(t, 3.0, b.Height(), 1e-9)
	assert.Equal(t, Vec3{2, 0.5, 2.5}, b.Center())
}
