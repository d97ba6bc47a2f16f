package canonical

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalCrossImplVector(t *testing.T) {
	// E4 from the spec's end-to-end scenarios.
	records := []Record{{Type: "ant", Name: ".", Value: "abc123"}}

	got, err := Marshal(records, 0)
	require.NoError(t, err)
	require.Equal(t, `[{"name":".","type":"ant","value":"abc123"}]`, string(got))
	require.Len(t, got, 44)
}

func TestMarshalKeyOrderIgnoresStructOrder(t *testing.T) {
	records := []Record{{Value: "v", Name: "n", Type: "t"}}
	got, err := Marshal(records, 0)
	require.NoError(t, err)
	require.Equal(t, `[{"name":"n","type":"t","value":"v"}]`, string(got))
}

func TestMarshalEmpty(t *testing.T) {
	got, err := Marshal(nil, 0)
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
}

func TestMarshalEscaping(t *testing.T) {
	records := []Record{{Type: "text", Name: ".", Value: "a\"b\\c\nd\tünïcödé"}}
	got, err := Marshal(records, 0)
	require.NoError(t, err)
	require.Equal(t, "[{\"name\":\".\",\"type\":\"text\",\"value\":\"a\\\"b\\\\c\\u000ad\\u0009ünïcödé\"}]", string(got))
}

func TestMarshalRejectsOversizeArray(t *testing.T) {
	records := make([]Record, 3)
	_, err := Marshal(records, 2)
	require.ErrorIs(t, err, ErrTooManyRecords)
}

func TestMarshalRejectsInvalidUTF8(t *testing.T) {
	records := []Record{{Type: "ant", Name: ".", Value: string([]byte{0xff, 0xfe})}}
	_, err := Marshal(records, 0)
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestDeterminismRoundTrip(t *testing.T) {
	// Invariant 1: canonical(R) == canonical(parse(canonical(R))).
	records := []Record{
		{Type: "ant", Name: ".", Value: "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf"},
		{Type: "text", Name: "www", Value: "hello"},
	}

	first, err := Marshal(records, 0)
	require.NoError(t, err)

	parsed, err := Parse(first, 0)
	require.NoError(t, err)

	second, err := Marshal(parsed, 0)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestParseRejectsOversizeArray(t *testing.T) {
	data := []byte(`[{"name":".","type":"ant","value":"a"},{"name":".","type":"ant","value":"b"}]`)
	_, err := Parse(data, 1)
	require.ErrorIs(t, err, ErrTooManyRecords)
}
