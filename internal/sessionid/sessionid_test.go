package sessionid

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValidAndVersion7(t *testing.T) {
	t.Parallel()

	id := New()
	require.NoError(t, Validate(id))

	u, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, u := range []uuid.UUID{
		{},
		uuid.Must(uuid.Parse("ffffffff-ffff-ffff-ffff-ffffffffffff")),
		uuid.Must(uuid.Parse("01890a5d-ac96-774b-bcce-b302099a8057")),
	} {
		s := Encode(u)
		assert.Len(t, s, Length)
		got, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}

	assert.Equal(t, "00000000000000000000000000", Encode(uuid.UUID{}))
	assert.Equal(t, "7zzzzzzzzzzzzzzzzzzzzzzzzz", Encode(uuid.Must(uuid.Parse("ffffffff-ffff-ffff-ffff-ffffffffffff"))))
}

func TestIDsSortByCreationTime(t *testing.T) {
	t.Parallel()

	var prev string
	for i := 0; i < 5; i++ {
		id := New()
		if prev != "" {
			assert.Less(t, prev, id)
		}
		prev = id
		time.Sleep(2 * time.Millisecond)
	}
}

func TestGeneratorWithReader(t *testing.T) {
	t.Parallel()

	g := Generator{Rand: bytes.NewReader(bytes.Repeat([]byte{0xab}, 64))}
	require.NoError(t, Validate(g.New()))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"01h5n0et5q6mt3v7ms1234abcd":   true,
		"01h5n0et5q6mt3v7ms123":        false,
		"81h5n0et5q6mt3v7ms1234abcd":   false,
		"01h5n0et5q6mt3v7ms1234abcu":   false,
		"01h5n0et5q6mt3v7ms1234abcdef": false,
	}
	for id, ok := range tests {
		err := Validate(id)
		if ok {
			assert.NoError(t, err, id)
		} else {
			assert.Error(t, err, id)
		}
	}
}
