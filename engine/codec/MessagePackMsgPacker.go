package codec

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
)

// MessagePackMsgPacker packs and unpacks message in MessagePack format
type MessagePackMsgPacker struct{}

// PackMsg appends msg in MessagePack format to buf
func (mp MessagePackMsgPacker) PackMsg(msg interface{}, buf []byte) ([]byte, error) {
	buffer := bytes.NewBuffer(buf)

	encoder := msgpack.NewEncoder(buffer)
	err := encoder.Encode(msg)
	if err != nil {
		return buf, errors.Wrapf(err, "msgpack encode %T", msg)
	}
	buf = buffer.Bytes()
	return buf, nil
}

// UnpackMsg unpacks bytes in MessagePack format to msg
func (mp MessagePackMsgPacker) UnpackMsg(data []byte, msg interface{}) error {
	if err := msgpack.Unmarshal(data, msg); err != nil {
		return errors.Wrapf(err, "msgpack decode %T", msg)
	}
	return nil
}
