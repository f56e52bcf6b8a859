package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// Protobuf stores proto messages in wire form inside a VSTR record. Marshaling
// is deterministic, so an unchanged message rewrites to the same bytes.
type Protobuf[T proto.Message] struct {
	newMsg func() T
}

var errNoMessageCtor = errors.New("codec: protobuf codec has no message constructor")

// NewProtobuf takes a constructor for an empty message, for example
// func() *pb.Session { return new(pb.Session) }. Decode fills a fresh message
// from it on every call.
func NewProtobuf[T proto.Message](newMsg func() T) Protobuf[T] {
	return Protobuf[T]{newMsg: newMsg}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.newMsg == nil {
		var zero T
		return zero, errNoMessageCtor
	}
	m := c.newMsg()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero T
		return zero, err
	}
	return m, nil
}
