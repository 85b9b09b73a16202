package service

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleSet(t *testing.T) {
	set := NewStyleSet(DefaultStyleConfig())
	assert.Equal(t, []StyleMode{StyleSatellite, StyleStreet}, set.Modes())

	street, err := set.Get(StyleStreet)
	require.NoError(t, err)
	assert.Equal(t, "https://demotiles.maplibre.org/style.json", street.URL)
	assert.Nil(t, street.Spec)

	sat, err := set.Get(StyleSatellite)
	require.NoError(t, err)
	assert.Empty(t, sat.URL)
	sources := sat.Spec["sources"].(map[string]any)
	raster := sources["satellite"].(map[string]any)
	assert.Equal(t, "raster", raster["type"])
	assert.Equal(t, 256, raster["tileSize"])
	assert.Equal(t, "Tiles © Esri", raster["attribution"])
}

func TestStyleSetUnknown(t *testing.T) {
	_, err := NewStyleSet(DefaultStyleConfig()).Get("terrain")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownStyle))
}
