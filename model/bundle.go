package model

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Bundle 是离线流程产出的序列化产物，四个部分与训练脚本的输出一一对应。
// TitleToID / IDToTitle 可省略，省略时由 Titles 推导。
type Bundle struct {
	TitleToID map[string]int `json:"title_to_id,omitempty" yaml:"title_to_id,omitempty"`
	IDToTitle map[int]string `json:"id_to_title,omitempty" yaml:"id_to_title,omitempty"`
	Titles    []string       `json:"titles" yaml:"titles"`
	DocTopic  [][]float64    `json:"doc_topic" yaml:"doc_topic"`
}

// Build 校验产物并构造 TopicModel。
func (b *Bundle) Build() (*TopicModel, error) {
	if b == nil {
		return nil, invalidArtifact("bundle is nil")
	}
	if b.TitleToID == nil && b.IDToTitle == nil {
		return NewTopicModelFromTitles(b.Titles, b.DocTopic)
	}
	return NewTopicModel(b.TitleToID, b.IDToTitle, b.Titles, b.DocTopic)
}

// Bundle 导出模型的完整产物（四个部分都会填充）。
func (m *TopicModel) Bundle() *Bundle {
	b := &Bundle{
		TitleToID: make(map[string]int, len(m.idToTitle)),
		IDToTitle: make(map[int]string, len(m.idToTitle)),
		Titles:    m.Titles(),
		DocTopic:  make([][]float64, len(m.matrix)),
	}
	for id, title := range m.idToTitle {
		b.TitleToID[title] = id
		b.IDToTitle[id] = title
		b.DocTopic[id] = append([]float64(nil), m.matrix[id]...)
	}
	return b
}

// DecodeJSON 从 JSON 读取产物并构造模型。
func DecodeJSON(r io.Reader) (*TopicModel, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return b.Build()
}

// DecodeYAML 从 YAML 读取产物并构造模型。
func DecodeYAML(r io.Reader) (*TopicModel, error) {
	var b Bundle
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return b.Build()
}

// EncodeJSON 将模型写为 JSON 产物。
func EncodeJSON(w io.Writer, m *TopicModel) error {
	return json.NewEncoder(w).Encode(m.Bundle())
}

// EncodeYAML 将模型写为 YAML 产物。
func EncodeYAML(w io.Writer, m *TopicModel) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(m.Bundle()); err != nil {
		return err
	}
	return enc.Close()
}
