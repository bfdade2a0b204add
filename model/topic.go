// Package model 提供只读的主题模型：物品索引（标题 <-> id）与 N×K 文档-主题矩阵。
//
// 主题模型由离线流程（文本清洗 + TF-IDF + NMF）一次性产出，进程内只加载一次，
// 构造后不可变，可被任意数量的 goroutine 并发读取。
package model

import (
	"fmt"
	"math"

	"github.com/rushteam/topicrec/core"
)

// TopicModel 是不可变的主题模型。
type TopicModel struct {
	titleToID map[string]int
	idToTitle []string
	matrix    [][]float64
	dim       int
}

// NewTopicModel 由产物的四个部分构造主题模型，并校验一致性：
//   - titleToID 与 idToTitle 互逆且为双射，id 恰为 [0, N)
//   - titles 的第 i 项即 id 为 i 的标题
//   - matrix 恰有 N 行，每行长度相同（K > 0），权重有限且非负
//
// 输入会被深拷贝，调用方之后的修改不影响模型。
func NewTopicModel(titleToID map[string]int, idToTitle map[int]string, titles []string, matrix [][]float64) (*TopicModel, error) {
	n := len(titles)
	if n == 0 {
		return nil, invalidArtifact("artifact has no items")
	}
	if len(titleToID) != n {
		return nil, invalidArtifact("title->id map has %d entries, want %d", len(titleToID), n)
	}
	if len(idToTitle) != n {
		return nil, invalidArtifact("id->title map has %d entries, want %d", len(idToTitle), n)
	}
	if len(matrix) != n {
		return nil, invalidArtifact("topic matrix has %d rows, want %d", len(matrix), n)
	}

	m := &TopicModel{
		titleToID: make(map[string]int, n),
		idToTitle: make([]string, n),
		matrix:    make([][]float64, n),
		dim:       len(matrix[0]),
	}
	if m.dim == 0 {
		return nil, invalidArtifact("topic vectors are empty")
	}

	for id, title := range titles {
		if got, ok := titleToID[title]; !ok || got != id {
			return nil, invalidArtifact("title->id map disagrees with title list at id %d (%q)", id, title)
		}
		if got, ok := idToTitle[id]; !ok || got != title {
			return nil, invalidArtifact("id->title map disagrees with title list at id %d (%q)", id, title)
		}
		if _, dup := m.titleToID[title]; dup {
			return nil, invalidArtifact("duplicate title %q", title)
		}
		m.titleToID[title] = id
		m.idToTitle[id] = title
	}

	for id, row := range matrix {
		if len(row) != m.dim {
			return nil, invalidArtifact("topic vector %d has %d weights, want %d", id, len(row), m.dim)
		}
		for k, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return nil, invalidArtifact("topic vector %d has invalid weight %v at topic %d", id, w, k)
			}
		}
		m.matrix[id] = append([]float64(nil), row...)
	}
	return m, nil
}

// NewTopicModelFromTitles 由有序标题列表推导双向映射后构造主题模型。
// id 按标题首次出现的顺序分配，重复标题视为无效产物。
func NewTopicModelFromTitles(titles []string, matrix [][]float64) (*TopicModel, error) {
	titleToID := make(map[string]int, len(titles))
	idToTitle := make(map[int]string, len(titles))
	for id, title := range titles {
		if _, dup := titleToID[title]; dup {
			return nil, invalidArtifact("duplicate title %q", title)
		}
		titleToID[title] = id
		idToTitle[id] = title
	}
	return NewTopicModel(titleToID, idToTitle, titles, matrix)
}

// LookupID 返回规范标题对应的 id，要求完全匹配。
func (m *TopicModel) LookupID(title string) (int, error) {
	id, ok := m.titleToID[title]
	if !ok {
		return 0, core.NewDomainErrorf(core.ModuleModel, core.ErrorCodeUnknownItem, "model: unknown title %q", title)
	}
	return id, nil
}

// LookupTitle 返回 id 对应的规范标题。
func (m *TopicModel) LookupTitle(id int) (string, error) {
	if err := m.checkID(id); err != nil {
		return "", err
	}
	return m.idToTitle[id], nil
}

// Vector 返回 id 的主题向量副本。
func (m *TopicModel) Vector(id int) ([]float64, error) {
	if err := m.checkID(id); err != nil {
		return nil, err
	}
	return append([]float64(nil), m.matrix[id]...), nil
}

// Range 按 id 顺序遍历所有主题向量，fn 返回 false 时停止。
// 传入的切片直接指向模型内部数据，只能读取。
func (m *TopicModel) Range(fn func(id int, vec []float64) bool) {
	for id, row := range m.matrix {
		if !fn(id, row) {
			return
		}
	}
}

// ItemCount 返回物品数 N。
func (m *TopicModel) ItemCount() int { return len(m.idToTitle) }

// Dim 返回主题数 K。
func (m *TopicModel) Dim() int { return m.dim }

// Titles 返回按 id 排列的规范标题列表副本。
func (m *TopicModel) Titles() []string {
	return append([]string(nil), m.idToTitle...)
}

func (m *TopicModel) checkID(id int) error {
	if id < 0 || id >= len(m.idToTitle) {
		return core.NewDomainErrorf(core.ModuleModel, core.ErrorCodeUnknownItem,
			"model: item id %d out of range [0, %d)", id, len(m.idToTitle))
	}
	return nil
}

func invalidArtifact(format string, args ...any) error {
	return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidArtifact, "model: "+fmt.Sprintf(format, args...))
}
