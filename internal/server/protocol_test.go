package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestJSONRoundTrip(t *testing.T) {
	req := Request{Op: OpSet, Key: "a", Value: []byte("1")}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded Request
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, req, decoded)
}

func TestResponseOmitsEmptyFields(t *testing.T) {
	resp := Response{}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(data))
}

func TestResponseCarriesFoundFlag(t *testing.T) {
	resp := Response{Value: []byte("v"), Found: true}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, decoded.Found)
	require.Equal(t, []byte("v"), decoded.Value)
}
