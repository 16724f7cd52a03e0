package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Score     float32 `json:"score"`
}

func TestCodecsInterchangeable(t *testing.T) {
	in := map[string]any{
		"scores":  map[string]float32{"12": 0.5, "7": 2},
		"samples": []sample{{Latitude: 51.2, Longitude: 4.4, Score: 1}},
	}

	for _, writer := range []Codec{JSON{}, GoJSON{}} {
		for _, reader := range []Codec{JSON{}, GoJSON{}} {
			t.Run(writer.Name()+"->"+reader.Name(), func(t *testing.T) {
				b, err := writer.Marshal(in)
				require.NoError(t, err)

				var out struct {
					Scores  map[string]float32 `json:"scores"`
					Samples []sample           `json:"samples"`
				}
				require.NoError(t, reader.Unmarshal(b, &out))
				assert.Equal(t, map[string]float32{"12": 0.5, "7": 2}, out.Scores)
				assert.Equal(t, []sample{{Latitude: 51.2, Longitude: 4.4, Score: 1}}, out.Samples)
			})
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, Default.Name(), c.Name())

	_, err = ByName("gob")
	assert.Error(t, err)
}
