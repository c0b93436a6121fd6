package common

import (
	"fmt"
	"image"
)

// BoundingBox is an axis-aligned box given by its corners, in pixels.
type BoundingBox struct {
	X1, Y1, X2, Y2 float32
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%.2f, %.2f), (%.2f, %.2f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Width returns X2 - X1.
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns Y2 - Y1.
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Area returns (Y2 - Y1) * (X2 - X1).
//
// The box is not canonicalized first, so an inverted box yields a negative
// or mixed-sign product exactly as the raw corners dictate.
//
// @example
// box := BoundingBox{X1: 53, Y1: 87, X2: 471, Y2: 420}
// box.Area() // 139194
func (b BoundingBox) Area() float32 {
	return b.Height() * b.Width()
}

// Corners returns [X1, Y1, X2, Y2].
func (b BoundingBox) Corners() [4]float32 {
	return [4]float32{b.X1, b.Y1, b.X2, b.Y2}
}

// ToRect converts the bounding box to an image.Rectangle.
//
// This loses the fractional part of every corner.
//
// @example
// box := BoundingBox{X1: 100.5, Y1: 100.5, X2: 200.5, Y2: 300.5}
// rect := box.ToRect() // (100,100)-(200,300)
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

// Within reports whether the box lies inside a width x height image.
func (b BoundingBox) Within(width, height int) bool {
	return b.ToRect().In(image.Rect(0, 0, width, height))
}
