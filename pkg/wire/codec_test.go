package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "set value",
			req: Request{
				MessageID:       "m-1",
				Action:          ActionSetValue,
				OperationHandle: "op.set.numeric",
				Argument:        mustMarshal(t, 42.5),
			},
		},
		{
			name: "activate without arguments",
			req: Request{
				MessageID:       "m-2",
				Action:          ActionActivate,
				OperationHandle: "op.activate",
				Source:          "urn:uuid:consumer",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeRequest(&tt.req)
			if err != nil {
				t.Fatalf("EncodeRequest failed: %v", err)
			}

			decoded, err := DecodeRequest(data)
			if err != nil {
				t.Fatalf("DecodeRequest failed: %v", err)
			}

			if decoded.MessageID != tt.req.MessageID {
				t.Errorf("MessageID mismatch: got %q, want %q", decoded.MessageID, tt.req.MessageID)
			}
			if decoded.Action != tt.req.Action {
				t.Errorf("Action mismatch: got %v, want %v", decoded.Action, tt.req.Action)
			}
			if decoded.OperationHandle != tt.req.OperationHandle {
				t.Errorf("OperationHandle mismatch: got %q, want %q", decoded.OperationHandle, tt.req.OperationHandle)
			}
			if decoded.Source != tt.req.Source {
				t.Errorf("Source mismatch: got %q, want %q", decoded.Source, tt.req.Source)
			}
			if !bytes.Equal(decoded.Argument, tt.req.Argument) {
				t.Errorf("Argument mismatch: got %x, want %x", decoded.Argument, tt.req.Argument)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{
			name: "accepted",
			resp: Response{
				MessageID:     "m-1",
				Status:        StatusWait,
				TransactionID: 7,
				MdibVersion:   12,
				SequenceID:    "urn:uuid:seq",
			},
		},
		{
			name: "rejected",
			resp: Response{
				MessageID:    "m-2",
				Status:       StatusFailed,
				MdibVersion:  12,
				SequenceID:   "urn:uuid:seq",
				Error:        ErrorInvalidValue,
				ErrorMessage: `operation not known: "nope"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeResponse(&tt.resp)
			if err != nil {
				t.Fatalf("EncodeResponse failed: %v", err)
			}

			decoded, err := DecodeResponse(data)
			if err != nil {
				t.Fatalf("DecodeResponse failed: %v", err)
			}
			tt.resp.Type = MessageTypeResponse
			if *decoded != tt.resp {
				t.Errorf("response mismatch: got %+v, want %+v", *decoded, tt.resp)
			}
			if decoded.IsSuccess() != (tt.resp.Status != StatusFailed) {
				t.Errorf("IsSuccess() = %v for status %s", decoded.IsSuccess(), tt.resp.Status)
			}
		})
	}
}

func TestReportRoundTrip(t *testing.T) {
	r := Report{
		Status:          StatusFailed,
		TransactionID:   3,
		MdibVersion:     9,
		SequenceID:      "urn:uuid:seq",
		Error:           ErrorOther,
		ErrorMessage:    "value out of range",
		OperationHandle: "op.set.numeric",
		OperationTarget: "numeric",
		Action:          ActionSetValue,
		Source:          "consumer-1",
	}

	data, err := EncodeReport(&r)
	if err != nil {
		t.Fatalf("EncodeReport failed: %v", err)
	}
	decoded, err := DecodeReport(data)
	if err != nil {
		t.Fatalf("DecodeReport failed: %v", err)
	}
	if *decoded != r {
		t.Errorf("report mismatch: got %+v, want %+v", *decoded, r)
	}
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "valid",
			req:     Request{Type: MessageTypeRequest, MessageID: "a", Action: ActionSetString, OperationHandle: "op"},
			wantErr: nil,
		},
		{
			name:    "empty operation handle is not a framing error",
			req:     Request{Type: MessageTypeRequest, MessageID: "a", Action: ActionSetString},
			wantErr: nil,
		},
		{
			name:    "missing message id",
			req:     Request{Type: MessageTypeRequest, Action: ActionSetString, OperationHandle: "op"},
			wantErr: ErrMissingMessageID,
		},
		{
			name:    "unknown action",
			req:     Request{Type: MessageTypeRequest, MessageID: "a", Action: 99, OperationHandle: "op"},
			wantErr: ErrInvalidAction,
		},
		{
			name:    "zero action",
			req:     Request{Type: MessageTypeRequest, MessageID: "a", OperationHandle: "op"},
			wantErr: ErrInvalidAction,
		},
		{
			name:    "wrong message type",
			req:     Request{Type: MessageTypeReport, MessageID: "a", Action: ActionSetString, OperationHandle: "op"},
			wantErr: ErrWrongMessageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeWrongMessageType(t *testing.T) {
	data, err := EncodeReport(&Report{OperationHandle: "op", Action: ActionActivate})
	if err != nil {
		t.Fatalf("EncodeReport failed: %v", err)
	}
	if _, err := DecodeResponse(data); !errors.Is(err, ErrWrongMessageType) {
		t.Errorf("DecodeResponse(report) = %v, want ErrWrongMessageType", err)
	}
	if _, err := DecodeRequest(data); !errors.Is(err, ErrWrongMessageType) {
		t.Errorf("DecodeRequest(report) = %v, want ErrWrongMessageType", err)
	}
}

func TestPeekMessageType(t *testing.T) {
	req, _ := EncodeRequest(&Request{MessageID: "a", Action: ActionActivate, OperationHandle: "op"})
	resp, _ := EncodeResponse(&Response{MessageID: "a"})
	rep, _ := EncodeReport(&Report{OperationHandle: "op"})
	other, _ := Marshal(map[int]any{0: 42})

	tests := []struct {
		name string
		data []byte
		want MessageType
	}{
		{"request", req, MessageTypeRequest},
		{"response", resp, MessageTypeResponse},
		{"report", rep, MessageTypeReport},
		{"unknown type", other, MessageTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeekMessageType(tt.data)
			if err != nil {
				t.Fatalf("PeekMessageType failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("PeekMessageType() = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := PeekMessageType([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for malformed data")
	}
}

func TestCBORCompactness(t *testing.T) {
	data, err := EncodeRequest(&Request{
		MessageID:       "m",
		Action:          ActionSetValue,
		OperationHandle: "h",
		Argument:        mustMarshal(t, 1.0),
	})
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	if bytes.Contains(data, []byte("OperationHandle")) || bytes.Contains(data, []byte("MessageID")) {
		t.Errorf("encoding uses string keys: %x", data)
	}
	if len(data) > 24 {
		t.Errorf("request is %d bytes, expected integer keyed encoding", len(data))
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	data, err := Marshal(map[int]any{
		0:  uint8(MessageTypeRequest),
		1:  "m",
		2:  uint8(ActionActivate),
		3:  "op",
		99: "from a newer consumer",
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	req, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if req.OperationHandle != "op" {
		t.Errorf("OperationHandle = %q, want op", req.OperationHandle)
	}
}

func TestClone(t *testing.T) {
	orig := Report{OperationHandle: "op", TransactionID: 4, Status: StatusFinished}
	clone, err := Clone(orig)
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if clone != orig {
		t.Errorf("Clone() = %+v, want %+v", clone, orig)
	}
}

func TestEqual(t *testing.T) {
	a := Response{MessageID: "a", Status: StatusWait}
	b := Response{MessageID: "a", Status: StatusWait}
	c := Response{MessageID: "a", Status: StatusFailed}
	if !Equal(a, b) {
		t.Error("expected equal responses")
	}
	if Equal(a, c) {
		t.Error("expected different responses")
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return data
}
