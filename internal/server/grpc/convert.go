package grpc

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/pakegate/internal/common"
)

// BytesValue encodes b as a list of numbers, the same shape the HTTP API
// uses for byte payloads.
func BytesValue(b []byte) *structpb.Value {
	values := make([]*structpb.Value, len(b))
	for i, v := range b {
		values[i] = structpb.NewNumberValue(float64(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// bytesField decodes field name of s. An absent or null field gives nil.
func bytesField(s *structpb.Struct, name string) ([]byte, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}

	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list of bytes", common.ErrValidation, name)
	}

	out := make([]byte, len(list.GetValues()))
	for i, item := range list.GetValues() {
		n, isNumber := item.GetKind().(*structpb.Value_NumberValue)
		if !isNumber || n.NumberValue < 0 || n.NumberValue > 255 || n.NumberValue != math.Trunc(n.NumberValue) {
			return nil, fmt.Errorf("%w: %s must be a list of bytes", common.ErrValidation, name)
		}
		out[i] = byte(n.NumberValue)
	}
	return out, nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}
	str, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", fmt.Errorf("%w: %s must be a string", common.ErrValidation, name)
	}
	return str.StringValue, nil
}
