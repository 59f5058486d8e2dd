package server

import "math"

const (
	// zoomThreshold 总尺寸不超过该值时不缩放视野
	zoomThreshold = 64.0
	// zoomExponent 超过阈值后视野按次线性速度扩大
	zoomExponent = 0.4
)

// Viewport 玩家当前可见的轴对齐矩形区域
type Viewport struct {
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	RangeX  float64 `json:"rangeX"`
	RangeY  float64 `json:"rangeY"`
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
	Top     float64 `json:"top"`
	Bottom  float64 `json:"bottom"`
}

// ZoomFactor 视野缩放系数，取值 (0, 1]
func ZoomFactor(totalSize float64) float64 {
	return math.Pow(math.Min(zoomThreshold/totalSize, 1), zoomExponent)
}

// ComputeViewport 根据蛇列表重新计算视野。
// 没有蛇时（死亡/复活中）保留 prev 的中心点，只更新半宽高。
func ComputeViewport(snakes []*Entity, base ViewBase, prev Viewport) Viewport {
	totalSize := 1.0
	for _, s := range snakes {
		totalSize += s.PhysicalSize()
	}
	factor := ZoomFactor(totalSize)

	v := prev
	v.RangeX = base.BaseX / factor
	v.RangeY = base.BaseY / factor

	if n := len(snakes); n > 0 {
		var x, y float64
		for _, s := range snakes {
			p := s.Position()
			x += p.X
			y += p.Y
		}
		v.CenterX = x / float64(n)
		v.CenterY = y / float64(n)
	}

	v.Top = v.CenterY - v.RangeY
	v.Bottom = v.CenterY + v.RangeY
	v.Left = v.CenterX - v.RangeX
	v.Right = v.CenterX + v.RangeX
	return v
}

// Contains 边界包含在内
func (v Viewport) Contains(p Vec2) bool {
	return p.X >= v.Left && p.X <= v.Right && p.Y >= v.Top && p.Y <= v.Bottom
}
