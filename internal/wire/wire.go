// Package wire implements the echo message codec.
//
// The schema is a single-field protobuf message:
//
//	message EchoMessage {
//	  string content = 1;
//	}
//
// Encode and Decode speak the standard proto wire format so any protobuf
// client can talk to the server. The schema is small enough that the codec
// is written directly against protowire instead of a generated binding.
package wire

import (
	"fmt"
	"unicode/utf8"

	perrors "github.com/louisbranch/echowire/internal/platform/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// contentField is the EchoMessage.content field number.
const contentField = 1

// EchoMessage is the application message echoed back to clients.
type EchoMessage struct {
	Content string
}

// Encode serialises the message to the proto wire format.
//
// An empty content field is omitted entirely, matching proto3 default
// semantics, so Encode of a zero message returns an empty payload.
func Encode(msg *EchoMessage) []byte {
	if msg == nil || msg.Content == "" {
		return nil
	}
	buf := protowire.AppendTag(nil, contentField, protowire.BytesType)
	return protowire.AppendString(buf, msg.Content)
}

// Decode parses exactly one EchoMessage from the byte range.
//
// Unknown fields are skipped per proto semantics; a repeated content field
// keeps the last value. Malformed input yields a DECODE_FAILED domain error.
func Decode(data []byte) (*EchoMessage, error) {
	msg := &EchoMessage{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, perrors.Wrap(perrors.CodeDecodeFailed, "malformed field tag", protowire.ParseError(n))
		}
		data = data[n:]

		if num == contentField && typ == protowire.BytesType {
			value, m := protowire.ConsumeString(data)
			if m < 0 {
				return nil, perrors.Wrap(perrors.CodeDecodeFailed, "malformed content field", protowire.ParseError(m))
			}
			if !utf8.ValidString(value) {
				return nil, perrors.New(perrors.CodeDecodeFailed, "content is not valid UTF-8")
			}
			msg.Content = value
			data = data[m:]
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return nil, perrors.Wrap(perrors.CodeDecodeFailed,
				fmt.Sprintf("malformed field %d", num), protowire.ParseError(m))
		}
		data = data[m:]
	}
	return msg, nil
}
