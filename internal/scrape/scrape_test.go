package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardRef(t *testing.T) {
	cases := []struct {
		in      string
		set     string
		number  string
		wantErr bool
	}{
		{in: "OBF-125", set: "OBF", number: "125"},
		{in: "OBF 125", set: "OBF", number: "125"},
		{in: "Charizard ex (OBF 125)", set: "OBF", number: "125"},
		{in: "MEW-181a", set: "MEW", number: "181a"},
		{in: "just a name", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			ref, err := ParseCardRef(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.set, ref.Set)
			assert.Equal(t, tc.number, ref.Number)
		})
	}
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Charizard ex", stripTags(`<b>Charizard</b> <i>ex</i>`))
	assert.Equal(t, "a & b", stripTags("a &amp;\n b"))
	assert.Equal(t, "", stripTags("<div></div>"))
}

func TestFirstElement(t *testing.T) {
	page := `<p class="card-text-title">Charizard ex - Fire - 330 HP</p>
<p class="card-text-type">Pokemon - Stage 2 - Evolves from Charmeleon</p>`

	assert.Equal(t, "Charizard ex - Fire - 330 HP", firstElement(page, "p", "card-text-title"))
	assert.Equal(t, "Pokemon - Stage 2 - Evolves from Charmeleon", firstElement(page, "p", "card-text-type"))
	assert.Equal(t, "", firstElement(page, "p", "card-text-wrr"))
}
