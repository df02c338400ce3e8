package imaging

import (
	"image"
	"math"
	"sort"
)

// RotatedRect is a rectangle of arbitrary orientation.
type RotatedRect struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	// Angle is the rotation of the rectangle in degrees, in [-90, 0),
	// measured in image coordinates (Y grows downward).
	Angle float64 `json:"angle"`
}

// Area returns Width*Height.
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// foregroundHull returns the convex hull of every pixel in mask that satisfies
// isForeground. Only the leftmost and rightmost foreground pixel of each row
// can be hull vertices, so the scan keeps those two per row.
func foregroundHull(mask *image.Gray, isForeground func(v uint8) bool) []image.Point {
	b := mask.Bounds()
	pts := make([]image.Point, 0, 2*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[(y-b.Min.Y)*mask.Stride : (y-b.Min.Y)*mask.Stride+b.Dx()]
		left, right := -1, -1
		for x, v := range row {
			if isForeground(v) {
				if left < 0 {
					left = x
				}
				right = x
			}
		}
		if left < 0 {
			continue
		}
		pts = append(pts, image.Pt(left+b.Min.X, y))
		if right != left {
			pts = append(pts, image.Pt(right+b.Min.X, y))
		}
	}
	return convexHull(pts)
}

// convexHull computes the hull of pts with Andrew's monotone chain,
// returned counter-clockwise without repeating the first vertex.
func convexHull(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return pts
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// MinAreaRect returns the smallest rectangle enclosing the hull.
//
// The optimal rectangle shares a side with the hull, so every hull edge
// direction is tried. Pixel coordinates are treated as pixel centers and
// each side is extended by one pixel so a single row of pixels has height 1.
// A hull of one or two points yields an axis-aligned or line-aligned
// rectangle; an empty hull yields ok == false.
func MinAreaRect(hull []image.Point) (rect RotatedRect, ok bool) {
	if len(hull) == 0 {
		return RotatedRect{}, false
	}

	best := math.Inf(1)
	try := func(theta float64) {
		cos, sin := math.Cos(theta), math.Sin(theta)
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			x, y := float64(p.X), float64(p.Y)
			u := x*cos + y*sin
			v := -x*sin + y*cos
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		w := maxU - minU + 1
		h := maxV - minV + 1
		if area := w * h; area < best-1e-9 {
			best = area
			cu, cv := (minU+maxU)/2, (minV+maxV)/2
			rect = RotatedRect{
				CenterX: cu*cos - cv*sin,
				CenterY: cu*sin + cv*cos,
				Width:   w,
				Height:  h,
				Angle:   edgeAngle(theta),
			}
		}
	}

	try(0)
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		if a == b {
			continue
		}
		try(math.Atan2(float64(b.Y-a.Y), float64(b.X-a.X)))
	}
	return rect, true
}

// edgeAngle folds an edge direction in radians into the [-90, 0) degree
// range used by RotatedRect. A rectangle is unchanged by quarter turns, so
// only the direction modulo 90° matters.
func edgeAngle(theta float64) float64 {
	deg := math.Mod(theta*180/math.Pi, 90)
	if deg < 0 {
		deg += 90
	}
	// Treat values within float noise of 90 as 0.
	if 90-deg < 1e-9 {
		deg = 0
	}
	return deg - 90
}
