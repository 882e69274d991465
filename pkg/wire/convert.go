package wire

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// NewRequest builds a request with a fresh message id. The argument is
// encoded with EncodeArgument.
func NewRequest(reg *model.Registry, kind sco.Kind, operationHandle string, arg any) (*Request, error) {
	action, ok := ActionFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %d", sco.ErrUnknownKind, kind)
	}
	raw, err := EncodeArgument(reg, kind, arg)
	if err != nil {
		return nil, err
	}
	return &Request{
		Type:            MessageTypeRequest,
		MessageID:       uuid.NewString(),
		Action:          action,
		OperationHandle: operationHandle,
		Argument:        raw,
	}, nil
}

// ToSco decodes the request argument and returns the engine request.
func (r *Request) ToSco(reg *model.Registry) (sco.Request, error) {
	kind, ok := r.Action.Kind()
	if !ok {
		return sco.Request{}, fmt.Errorf("%w: %d", ErrInvalidAction, r.Action)
	}
	arg, err := DecodeArgument(reg, kind, r.Argument)
	if err != nil {
		return sco.Request{}, err
	}
	return sco.Request{
		OperationHandle: r.OperationHandle,
		Kind:            kind,
		Argument:        arg,
		Source:          r.Source,
	}, nil
}

// ResponseFromInfo builds the response to the request with messageID.
func ResponseFromInfo(messageID string, info sco.InvocationInfo) *Response {
	return &Response{
		Type:          MessageTypeResponse,
		MessageID:     messageID,
		Status:        StatusFor(info.State),
		TransactionID: info.TransactionID,
		MdibVersion:   info.MdibVersion,
		SequenceID:    info.SequenceID,
		Error:         ErrorKindFor(info.Error),
		ErrorMessage:  info.ErrorMessage,
	}
}

// Info converts the response back to the engine's answer.
func (r *Response) Info() sco.InvocationInfo {
	return sco.InvocationInfo{
		SequenceID:    r.SequenceID,
		MdibVersion:   r.MdibVersion,
		TransactionID: r.TransactionID,
		State:         r.Status.State(),
		Error:         r.Error.InvocationError(),
		ErrorMessage:  r.ErrorMessage,
	}
}

// ReportFromSco converts an operation invoked report.
func ReportFromSco(r *sco.OperationInvokedReport) *Report {
	action, _ := ActionFor(r.Kind)
	return &Report{
		Type:            MessageTypeReport,
		Status:          StatusFor(r.State),
		TransactionID:   r.TransactionID,
		MdibVersion:     r.MdibVersion,
		SequenceID:      r.SequenceID,
		Error:           ErrorKindFor(r.Error),
		ErrorMessage:    r.ErrorMessage,
		OperationHandle: r.OperationHandle,
		OperationTarget: r.OperationTarget,
		Action:          action,
		Source:          r.Source,
	}
}
