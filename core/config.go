package core

// EngineConfig 是推荐引擎的默认值接口。
type EngineConfig interface {
	// DefaultMetric 返回默认的距离度量
	DefaultMetric() string

	// DefaultMinScore 返回默认的模糊匹配阈值，0 表示不设阈值
	DefaultMinScore() int

	// DefaultMaxConcurrent 返回默认的排名并发数，0 表示不限制
	DefaultMaxConcurrent() int
}

// DefaultEngineConfig 是默认的引擎配置实现，与参考行为一致。
type DefaultEngineConfig struct{}

func (c *DefaultEngineConfig) DefaultMetric() string {
	return "euclidean"
}

func (c *DefaultEngineConfig) DefaultMinScore() int {
	return 0
}

func (c *DefaultEngineConfig) DefaultMaxConcurrent() int {
	return 4
}
