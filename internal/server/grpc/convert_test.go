package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/pakegate/internal/common"
)

func TestBytesRoundTrip(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{"m": BytesValue([]byte{0, 7, 255})}}

	got, err := bytesField(s, "m")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 7, 255}, got)
}

func TestBytesField_AbsentAndNull(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{"n": structpb.NewNullValue()}}

	got, err := bytesField(s, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = bytesField(s, "n")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBytesField_Rejects(t *testing.T) {
	for name, v := range map[string]*structpb.Value{
		"string":   structpb.NewStringValue("abc"),
		"negative": numberList(-1),
		"too big":  numberList(300),
		"fraction": numberList(0.5),
	} {
		t.Run(name, func(t *testing.T) {
			s := &structpb.Struct{Fields: map[string]*structpb.Value{"m": v}}
			_, err := bytesField(s, "m")
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestStringField(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"a": structpb.NewStringValue("x"),
		"b": structpb.NewNumberValue(1),
	}}

	got, err := stringField(s, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	got, err = stringField(s, "none")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = stringField(s, "b")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func numberList(n float64) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{structpb.NewNumberValue(n)}})
}
