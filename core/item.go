package core

// Item 是推荐链路中的统一承载结构。
// ID 为主题模型中的行号；Score 为聚合排名分数，越小越相似。
type Item struct {
	ID    int
	Title string
	Score float64
	Meta  map[string]any
}

func NewItem(id int) *Item {
	return &Item{
		ID:   id,
		Meta: make(map[string]any),
	}
}

// IDs 按顺序提取物品 id。
func IDs(items []*Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.ID)
	}
	return out
}
