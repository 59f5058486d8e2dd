package server

import (
	"math"
	"testing"
)

func TestZoomFactor(t *testing.T) {
	tests := []struct {
		total float64
		want  float64
	}{
		{1, 1},
		{11, 1},
		{64, 1},
		{128, math.Pow(0.5, 0.4)},
		{640, math.Pow(0.1, 0.4)},
	}
	for _, tt := range tests {
		if got := ZoomFactor(tt.total); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ZoomFactor(%v) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestViewportGrowsWithSize(t *testing.T) {
	base := ViewBase{BaseX: 100, BaseY: 60}
	prev := Viewport{}
	lastX, lastY := 0.0, 0.0
	for size := 0.0; size <= 2000; size += 7 {
		snakes := []*Entity{{id: 1, kind: KindSnake, size: size}}
		v := ComputeViewport(snakes, base, prev)
		if v.RangeX < lastX || v.RangeY < lastY {
			t.Fatalf("size %v: range shrank from (%v,%v) to (%v,%v)", size, lastX, lastY, v.RangeX, v.RangeY)
		}
		if size+1 <= zoomThreshold && (v.RangeX != base.BaseX || v.RangeY != base.BaseY) {
			t.Fatalf("size %v: expected unzoomed range, got (%v,%v)", size, v.RangeX, v.RangeY)
		}
		if size+1 > zoomThreshold && v.RangeX <= lastX {
			t.Fatalf("size %v: range did not grow past the threshold", size)
		}
		lastX, lastY = v.RangeX, v.RangeY
	}
}

func TestComputeViewportSingleSnake(t *testing.T) {
	snakes := []*Entity{{id: 1, kind: KindSnake, pos: Vec2{0, 0}, size: 10}}
	v := ComputeViewport(snakes, ViewBase{BaseX: 100, BaseY: 100}, Viewport{})

	want := Viewport{RangeX: 100, RangeY: 100, Left: -100, Right: 100, Top: -100, Bottom: 100}
	if v != want {
		t.Fatalf("viewport = %+v, want %+v", v, want)
	}

	cases := []struct {
		name string
		p    Vec2
		want bool
	}{
		{"inside", Vec2{10, -10}, true},
		{"on right edge", Vec2{100, 50}, true},
		{"on corner", Vec2{-100, -100}, true},
		{"just outside", Vec2{100.1, 0}, false},
		{"below", Vec2{0, 100.0001}, false},
	}
	for _, c := range cases {
		if got := v.Contains(c.p); got != c.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", c.name, c.p, got, c.want)
		}
	}
}

func TestComputeViewportCentersOnAllSnakes(t *testing.T) {
	snakes := []*Entity{
		{id: 1, pos: Vec2{0, 0}, size: 1},
		{id: 2, pos: Vec2{100, 40}, size: 1},
	}
	v := ComputeViewport(snakes, ViewBase{BaseX: 10, BaseY: 10}, Viewport{})
	if v.CenterX != 50 || v.CenterY != 20 {
		t.Fatalf("center = (%v,%v), want (50,20)", v.CenterX, v.CenterY)
	}
	if v.Left != 40 || v.Right != 60 || v.Top != 10 || v.Bottom != 30 {
		t.Fatalf("edges = %+v", v)
	}
}

func TestComputeViewportKeepsCenterWithoutSnakes(t *testing.T) {
	prev := Viewport{CenterX: 300, CenterY: -20}
	v := ComputeViewport(nil, ViewBase{BaseX: 50, BaseY: 25}, prev)
	if v.CenterX != 300 || v.CenterY != -20 {
		t.Fatalf("center moved to (%v,%v)", v.CenterX, v.CenterY)
	}
	if v.Left != 250 || v.Right != 350 || v.Top != -45 || v.Bottom != 5 {
		t.Fatalf("edges = %+v", v)
	}
}
