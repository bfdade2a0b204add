package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeWeights 将主题权重编码为 BLOB：小端序 IEEE 754 float64，无长度前缀。
func EncodeWeights(vec []float64) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*8)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

// DecodeWeights 解码 EncodeWeights 生成的 BLOB。
func DecodeWeights(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vector: invalid weights blob length %d (not multiple of 8)", len(b))
	}
	vec := make([]float64, len(b)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return vec, nil
}
