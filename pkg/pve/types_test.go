package pve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleInt_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var quoted FlexibleInt
	require.NoError(t, json.Unmarshal([]byte(`"104"`), &quoted))
	assert.EqualValues(t, 104, quoted)

	var bare FlexibleInt
	require.NoError(t, json.Unmarshal([]byte(`104`), &bare))
	assert.EqualValues(t, 104, bare)

	var invalid FlexibleInt
	err := json.Unmarshal([]byte(`"not-a-number"`), &invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-number")
}

// The lxc listing reports vmid as a string on current releases and as a
// number on older ones; both decode.
func TestContainer_VMIDShapes(t *testing.T) {
	t.Parallel()

	var fromString Container
	require.NoError(t, json.Unmarshal([]byte(`{"vmid":"200","name":"proxy"}`), &fromString))
	assert.EqualValues(t, 200, fromString.VMID)

	var fromNumber Container
	require.NoError(t, json.Unmarshal([]byte(`{"vmid":200,"name":"proxy"}`), &fromNumber))
	assert.EqualValues(t, 200, fromNumber.VMID)
}
