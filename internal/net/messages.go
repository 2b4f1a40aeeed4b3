// Package net implements the optional TCP wire protocol that sits on top
// of the in-process engine: binary message framing, the accept loop, and
// the worker pool that drains client connections. None of this is part of
// the core (spec §1 scopes networking out of the redesigned matching
// engine); it is a collaborator that drives engine.Engine the way a CLI
// or any other caller would.
package net

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ladder/internal/engine"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short for specified field length")
)

type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	ModifyOrder
	LogBook
)

type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

type Message interface {
	GetType() MessageType
}

// Message format constants. Every message is prefixed by a 2-byte
// BaseMessage header naming its type, as the teacher's protocol did.
const (
	BaseMessageHeaderLen        = 2
	NewOrderMessageHeaderLen    = 1 + 8 + 8 + 16 + 1 // side, price, qty, correlation uuid, ownerLen
	CancelOrderMessageHeaderLen = 8 + 16             // orderID, correlation uuid
	ModifyOrderMessageHeaderLen = 8 + 8 + 8 + 16      // orderID, newPrice, newQty, correlation uuid
)

// BaseMessage is embedded by every concrete message type.
type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, fmt.Errorf("%w: header truncated", ErrMessageTooShort)
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	case ModifyOrder:
		return parseModifyOrder(msg)
	case LogBook:
		return BaseMessage{TypeOf: LogBook}, nil
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

// NewOrderMessage requests submission of a new limit order. CorrelationID
// lets the sender match an ExecutionReport/ErrorReport back to this
// specific request — the book's own identity for the order is the
// engine-assigned integer id, which the sender only learns from a report.
type NewOrderMessage struct {
	BaseMessage
	Side          engine.Side
	Price         int64
	Quantity      uint64
	CorrelationID uuid.UUID
	OwnerLen      uint8
	Owner         string
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, fmt.Errorf("%w: new-order header", ErrMessageTooShort)
	}
	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.Side = engine.Side(msg[0])
	m.Price = int64(binary.BigEndian.Uint64(msg[1:9]))
	m.Quantity = binary.BigEndian.Uint64(msg[9:17])
	copy(m.CorrelationID[:], msg[17:33])
	m.OwnerLen = msg[33]

	expectedTotalLen := NewOrderMessageHeaderLen + int(m.OwnerLen)
	if len(msg) < expectedTotalLen {
		return NewOrderMessage{}, fmt.Errorf("%w: owner name", ErrMessageTooShort)
	}
	m.Owner = string(msg[34 : 34+m.OwnerLen])
	return m, nil
}

// CancelOrderMessage requests cancellation of a live order by its
// engine-assigned id.
type CancelOrderMessage struct {
	BaseMessage
	OrderID       uint64
	CorrelationID uuid.UUID
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, fmt.Errorf("%w: cancel-order header", ErrMessageTooShort)
	}
	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}
	m.OrderID = binary.BigEndian.Uint64(msg[0:8])
	copy(m.CorrelationID[:], msg[8:24])
	return m, nil
}

// ModifyOrderMessage requests the reduce-only or cancel+resubmit modify
// path (spec §4.3.5), depending on whether NewPrice equals the order's
// current price. The teacher's protocol never had this message; it is
// added here because spec §6 names modify_order as part of the external
// surface.
type ModifyOrderMessage struct {
	BaseMessage
	OrderID       uint64
	NewPrice      int64
	NewQuantity   uint64
	CorrelationID uuid.UUID
}

func parseModifyOrder(msg []byte) (ModifyOrderMessage, error) {
	if len(msg) < ModifyOrderMessageHeaderLen {
		return ModifyOrderMessage{}, fmt.Errorf("%w: modify-order header", ErrMessageTooShort)
	}
	m := ModifyOrderMessage{BaseMessage: BaseMessage{TypeOf: ModifyOrder}}
	m.OrderID = binary.BigEndian.Uint64(msg[0:8])
	m.NewPrice = int64(binary.BigEndian.Uint64(msg[8:16]))
	m.NewQuantity = binary.BigEndian.Uint64(msg[16:24])
	copy(m.CorrelationID[:], msg[24:40])
	return m, nil
}

// Report is the server's reply: either an ExecutionReport describing one
// side of a trade, or an ErrorReport carrying a recoverable error kind
// back to the sender (spec §7).
type Report struct {
	MessageType   ReportMessageType
	CorrelationID uuid.UUID
	Side          engine.Side
	Price         int64
	Quantity      uint64
	MakerOrderID  uint64
	TakerOrderID  uint64
	ErrStrLen     uint32
	Err           string
}

const reportFixedHeaderLen = 1 + 16 + 1 + 8 + 8 + 8 + 8 + 4

// Serialize converts the report to wire bytes.
func (r *Report) Serialize() []byte {
	buf := make([]byte, reportFixedHeaderLen+len(r.Err))
	buf[0] = byte(r.MessageType)
	copy(buf[1:17], r.CorrelationID[:])
	buf[17] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[18:26], uint64(r.Price))
	binary.BigEndian.PutUint64(buf[26:34], r.Quantity)
	binary.BigEndian.PutUint64(buf[34:42], r.MakerOrderID)
	binary.BigEndian.PutUint64(buf[42:50], r.TakerOrderID)
	binary.BigEndian.PutUint32(buf[50:54], r.ErrStrLen)
	if r.ErrStrLen > 0 {
		copy(buf[54:], r.Err)
	}
	return buf
}

// tradeReport builds the report addressed to one side of a trade. side is
// the role (Buy/Sell) of the party the report is addressed to;
// correlationID is the id of the request that party sent, or uuid.Nil when
// the report goes to a resting maker, whose request id is not kept.
func tradeReport(correlationID uuid.UUID, side engine.Side, trade engine.Trade) Report {
	return Report{
		MessageType:   ExecutionReport,
		CorrelationID: correlationID,
		Side:          side,
		Price:         trade.Price,
		Quantity:      trade.Quantity,
		MakerOrderID:  trade.MakerOrderID,
		TakerOrderID:  trade.TakerOrderID,
	}
}

func errorReport(correlationID uuid.UUID, err error) Report {
	errStr := err.Error()
	return Report{
		MessageType:   ErrorReport,
		CorrelationID: correlationID,
		ErrStrLen:     uint32(len(errStr)),
		Err:           errStr,
	}
}
