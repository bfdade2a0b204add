// Package topicrec 是一个基于主题向量的电影推荐工具包。
//
// 设计要点：
// - 主题模型只读：离线产出的 N×K 文档-主题矩阵加载后不可变，可并发查询
// - 排名聚合：每个输入电影按距离给出 RankList，候选分数为各 RankList 中的名次之和
// - Pipeline 后处理：聚合结果可经过配置驱动的 Node（过滤 / 截断）再选取
package topicrec

import (
	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/pipeline"
	"github.com/rushteam/topicrec/service"
)

// 轻量 facade：便于直接 import "topicrec" 使用核心抽象。
type (
	TopicModel  = model.TopicModel
	Recommender = service.Recommender
	Result      = service.Result
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
)

const (
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess

	NoticeZeroCount = service.NoticeZeroCount
)

var (
	NewTopicModel  = model.NewTopicModelFromTitles
	NewRecommender = service.NewRecommender
)
