package humastar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-hospitel/internal/templates"
)

func TestParseSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"selected":"h3","count":2}`))
	require.NoError(t, err)
	assert.Equal(t, "h3", s.String("selected"))
	assert.Equal(t, "", s.String("count"))
	assert.True(t, s.Has("count"))
	assert.False(t, s.Has("style"))

	s, err = ParseSignals(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = ParseSignals([]byte("{"))
	assert.Error(t, err)

	in := &SignalsInput{RawBody: []byte("nope")}
	_, err = in.MustParse()
	assert.Error(t, err)
}

func TestActionsFor(t *testing.T) {
	actions := ActionsFor("h2", []ActionDef{
		{Rel: "route", Pattern: "/api/v1/facilities/%s/route"},
		{Rel: "select", Pattern: "/api/v1/selection", Method: "PUT", Title: "Select facility"},
	})
	require.Len(t, actions, 2)
	assert.Equal(t, `</api/v1/facilities/h2/route>; rel="route"`, actions[0].LinkHeader())
	assert.Equal(t, `</api/v1/selection>; rel="select"; method="PUT"; title="Select facility"`, actions[1].LinkHeader())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, p.Data)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, []string{
		`</x?offset=0&limit=2>; rel="first"`,
		`</x?offset=0&limit=2>; rel="prev"`,
		`</x?offset=4&limit=2>; rel="next"`,
		`</x?offset=4&limit=2>; rel="last"`,
	}, p.PaginationLinks("/x"))

	all := Paginate(items, 0, 0)
	assert.Equal(t, items, all.Data)
	assert.Equal(t, 5, all.Limit)

	past := Paginate(items, 10, 3)
	assert.Empty(t, past.Data)
	assert.Equal(t, 5, past.Offset)

	empty := Paginate([]int{}, 0, 0)
	assert.Empty(t, empty.Data)
	assert.Nil(t, empty.PaginationLinks("/x"))
}

func TestRenderList(t *testing.T) {
	r, err := templates.New()
	require.NoError(t, err)

	html := RenderList(r, "facility-row", nil, "No facilities", "Catalog is empty")
	assert.Contains(t, html, "No facilities")

	html = RenderList(r, "facility-row", []any{map[string]any{
		"ID": "h1", "Name": "A", "Color": "#fff", "Summary": "1 / 2 beds",
		"DistanceKm": 1.0, "EtaMinutes": 2.0, "Selected": false,
	}}, "", "")
	assert.Contains(t, html, `id="row-h1"`)
}
