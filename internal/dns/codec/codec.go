package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/styxlabs/charon/internal/dns/common/log"
	"github.com/styxlabs/charon/internal/dns/domain"
)

// Codec encodes and decodes DNS messages on both sides of Charon: queries
// sent to an upstream forwarder and responses served to clients.
type Codec interface {
	EncodeQuery(q domain.Question) ([]byte, error)
	DecodeQuery(data []byte) (domain.Question, error)
	EncodeResponse(id uint16, q domain.Question, answers []Answer, rcode domain.RCode, aa bool) ([]byte, error)
	DecodeResponse(data []byte) (Header, []DecodedAnswer, error)
}

// udpCodec is the Codec used for the UDP transport, the only transport
// Charon speaks.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec returns a Codec that logs at debug level through logger.
func NewUDPCodec(logger log.Logger) Codec {
	return &udpCodec{logger: logger}
}

// EncodeQuery builds a minimal recursive query for relaying to an upstream
// forwarder: RD=1, one question, no other sections.
func (c *udpCodec) EncodeQuery(q domain.Question) ([]byte, error) {
	h := Header{ID: q.ID, RD: true, QDCount: 1}
	buf := h.Serialize()
	buf, err := SerializeQuestion(buf, q, map[string]int{})
	if err != nil {
		return nil, fmt.Errorf("codec: encoding query: %w", err)
	}
	c.logger.Debug(map[string]any{"id": q.ID, "name": q.Name, "type": q.Type.String()}, "encoded upstream query")
	return buf, nil
}

func (c *udpCodec) DecodeQuery(data []byte) (domain.Question, error) {
	q, err := DecodeQuery(data)
	if err != nil {
		return domain.Question{}, err
	}
	c.logger.Debug(map[string]any{"id": q.ID, "name": q.Name, "type": q.Type.String()}, "decoded client query")
	return q, nil
}

func (c *udpCodec) EncodeResponse(id uint16, q domain.Question, answers []Answer, rcode domain.RCode, aa bool) ([]byte, error) {
	buf, err := EncodeResponse(id, q, answers, rcode, aa)
	if err != nil {
		return nil, err
	}
	c.logger.Debug(map[string]any{
		"id":      id,
		"name":    q.Name,
		"rcode":   rcode.String(),
		"answers": len(answers),
		"bytes":   len(buf),
	}, "encoded response")
	return buf, nil
}

func (c *udpCodec) DecodeResponse(data []byte) (Header, []DecodedAnswer, error) {
	h, answers, err := DecodeResponse(data)
	if err != nil {
		return Header{}, nil, err
	}
	c.logger.Debug(map[string]any{"id": h.ID, "rcode": h.RCode.String(), "answers": len(answers)}, "decoded upstream response")
	return h, answers, nil
}

var _ Codec = &udpCodec{}

// QuestionIDFromHeader extracts just the ID field from a raw message,
// without fully parsing it, for quick rejection of stray UDP datagrams
// before the full decode path runs.
func QuestionIDFromHeader(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("codec: message too short to contain an ID")
	}
	return binary.BigEndian.Uint16(data[0:2]), nil
}
