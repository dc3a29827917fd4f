package profile

import (
	"testing"

	"github.com/sdko-org/areacheck/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	lab, err := Lookup("lab")
	require.NoError(t, err)
	assert.Equal(t, Global, lab.Scope)
	assert.Equal(t, 128, lab.HistoryCapacity)
	assert.Equal(t, validate.CollectAll, lab.Mode)
	assert.Equal(t, "lab", lab.Region.Name)

	q, err := Lookup(" Quadrant ")
	require.NoError(t, err)
	assert.Equal(t, PerClient, q.Scope)
	assert.Equal(t, 50, q.HistoryCapacity)

	_, err = Lookup("hexagon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lab, quadrant")
}

func TestLookupReturnsCopies(t *testing.T) {
	a, err := Lookup("lab")
	require.NoError(t, err)
	a.Region.Shapes[0].Name = "changed"

	b, err := Lookup("lab")
	require.NoError(t, err)
	assert.Equal(t, "rectangle", b.Region.Shapes[0].Name)
}

func TestScope(t *testing.T) {
	assert.Equal(t, "10.0.0.7", PerClient.Key("10.0.0.7"))
	assert.Equal(t, GlobalKey, Global.Key("10.0.0.7"))

	s, err := ParseScope("global")
	require.NoError(t, err)
	assert.Equal(t, Global, s)

	s, err = ParseScope("client")
	require.NoError(t, err)
	assert.Equal(t, PerClient, s)

	_, err = ParseScope("team")
	assert.Error(t, err)
}
