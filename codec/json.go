package codec

import "encoding/json"

// JSON serializes values with encoding/json. Records written with it keep the
// value readable in place: {"value":{...},"ttl":...,"expireAt":...}.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) jsonText() {}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
