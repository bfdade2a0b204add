package core

// RecommendContext 承载单次查询的信息，贯穿整个 Pipeline 透传。
// 每次查询新建，查询结束即丢弃，不做持久化。
type RecommendContext struct {
	// RawInputs 是用户原始输入的标题（已去除首尾空白）
	RawInputs []string

	// Inputs 是纠错后的规范标题，与 RawInputs 一一对应
	Inputs []string

	// InputIDs 是 Inputs 对应的物品 id
	InputIDs []int

	// Count 是请求的推荐数量 R
	Count int

	// Params 请求级扩展参数（例如 HTTP 层透传的参数）
	Params map[string]any
}

// IsInput 判断 id 是否为本次查询的输入物品。
func (rctx *RecommendContext) IsInput(id int) bool {
	if rctx == nil {
		return false
	}
	for _, in := range rctx.InputIDs {
		if in == id {
			return true
		}
	}
	return false
}
