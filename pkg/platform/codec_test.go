package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSuccessKeepsFalse(t *testing.T) {
	data, err := EncodeSuccess(false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","result":false}`, string(data))

	result, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, false, result)
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantResult any
		wantErr    error
		wantCode   string
	}{
		{name: "success true", data: `{"status":"success","result":true}`, wantResult: true},
		{name: "success null", data: `{"status":"success","result":null}`, wantResult: nil},
		{name: "not implemented", data: `{"status":"notImplemented"}`, wantErr: ErrMethodNotFound},
		{name: "error", data: `{"status":"error","error":{"code":"x","message":"y"}}`, wantCode: "x"},
		{name: "error without body", data: `{"status":"error"}`, wantCode: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecodeEnvelope([]byte(tt.data))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				var chErr *ChannelError
				require.ErrorAs(t, err, &chErr)
				assert.Equal(t, tt.wantCode, chErr.Code)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantResult, result)
			}
		})
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"status":"maybe"}`))
	assert.ErrorContains(t, err, "unknown status")

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeNotImplementedDecodes(t *testing.T) {
	_, err := DecodeEnvelope(EncodeNotImplemented())
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestEncodeError(t *testing.T) {
	data, err := EncodeError("denied", "nope", map[string]any{"n": 1})
	require.NoError(t, err)

	_, err = DecodeEnvelope(data)
	var chErr *ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, "denied: nope", chErr.Error())
	assert.Equal(t, map[string]any{"n": float64(1)}, chErr.Details)
}

func TestDecodeMethodCall(t *testing.T) {
	data, err := EncodeMethodCall("requestPermission", nil)
	require.NoError(t, err)

	call, err := DecodeMethodCall(data)
	require.NoError(t, err)
	assert.Equal(t, "requestPermission", call.Method)
	assert.Nil(t, call.Arguments)

	call, err = DecodeMethodCall([]byte(`{"args":{"a":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "", call.Method)

	_, err = DecodeMethodCall(nil)
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = DecodeMethodCall([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestChannelErrorString(t *testing.T) {
	assert.Equal(t, "code", NewChannelError("code", "").Error())
	assert.Equal(t, "code: msg", NewChannelError("code", "msg").Error())
}
