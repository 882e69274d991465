package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// An event log is a plain concatenation of CBOR items, one per event,
// with no header. Files can be appended to and concatenated.
var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

// MaxEventSize bounds one encoded event. Message payloads are the only
// unbounded part of an event.
const MaxEventSize = 1 << 20

func init() {
	var err error

	eventEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: event encoder mode: %v", err))
	}

	// Logs written by older builds may carry keys this build does not know.
	eventDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		MaxNestedLevels:   64,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: event decoder mode: %v", err))
	}
}

// EncodeEvent encodes event with integer keys. Timestamps are written in
// UTC.
func EncodeEvent(event Event) ([]byte, error) {
	event.Timestamp = event.Timestamp.UTC()
	data, err := eventEncMode.Marshal(event)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxEventSize {
		return nil, fmt.Errorf("log: event of %d bytes exceeds %d", len(data), MaxEventSize)
	}
	return data, nil
}

// DecodeEvent decodes one event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewDecoder returns a decoder reading consecutive events from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}
