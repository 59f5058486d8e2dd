package server

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// FoodCluster 地图上固定位置的一簇食物
type FoodCluster struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"` // 食物沿圆周均匀分布
	Size   float64 `yaml:"size"`
	Note   string  `yaml:"note"`
}

// SpawnTable 从 YAML 载入的静态食物簇
type SpawnTable struct {
	clusters []FoodCluster
}

// LoadSpawnTable 载入食物簇列表（YAML）
func LoadSpawnTable(path string) (*SpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list: %w", err)
	}
	var clusters []FoodCluster
	if err := yaml.Unmarshal(raw, &clusters); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	return &SpawnTable{clusters: clusters}, nil
}

// Count 食物总数
func (t *SpawnTable) Count() int {
	n := 0
	for _, c := range t.clusters {
		if c.Count > 0 {
			n += c.Count
		}
	}
	return n
}

// Apply 在世界中生成全部食物（坐标裁剪到边界内），返回生成数量
func (t *SpawnTable) Apply(w *World, defaultSize float64) int {
	n := 0
	for _, c := range t.clusters {
		size := c.Size
		if size <= 0 {
			size = defaultSize
		}
		for i := 0; i < c.Count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(c.Count)
			p := Vec2{X: c.X + c.Radius*math.Cos(angle), Y: c.Y + c.Radius*math.Sin(angle)}
			w.Spawn(KindFood, w.Clamp(p), size)
			n++
		}
	}
	return n
}
