package symbol

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portstudio/core"
)

func f(v float64) *float64 { return &v }

func TestDecodePortTyped(t *testing.T) {
	p, err := DecodePort(PortJSON{ID: "vcc", Type: "signal", X: f(10.123), Y: f(20.987), Locked: true})
	require.NoError(t, err)

	assert.Equal(t, "vcc", p.ID)
	assert.Equal(t, core.Signal, p.Type)
	assert.True(t, p.Locked)
	assert.Equal(t, core.Point{X: 10.12, Y: 20.99}, p.Geometry)
}

func TestDecodePortLegacyFlatInheritsTypeFromID(t *testing.T) {
	p, err := DecodePort(PortJSON{ID: "in", X: f(1), Y: f(2)})
	require.NoError(t, err)
	assert.Equal(t, core.In, p.Type)

	p, err = DecodePort(PortJSON{ID: "anode", X: f(1), Y: f(2)})
	require.NoError(t, err)
	assert.Equal(t, core.Reference, p.Type)
}

func TestDecodePortUnknownTypeMigratesToReference(t *testing.T) {
	p, err := DecodePort(PortJSON{ID: "a", Type: "bogus", X: f(1), Y: f(2)})
	require.NoError(t, err)
	assert.Equal(t, core.Reference, p.Type)
}

func TestDecodePortZone(t *testing.T) {
	p, err := DecodePort(PortJSON{ID: "body", Type: "process",
		Zone: &ZoneJSON{X: 1.111, Y: 2.222, Width: 3.333, Height: 4.444}})
	require.NoError(t, err)
	assert.Equal(t, core.Zone{X: 1.11, Y: 2.22, Width: 3.33, Height: 4.44}, p.Geometry)
}

func TestDecodePortErrors(t *testing.T) {
	_, err := DecodePort(PortJSON{ID: "a"})
	assert.ErrorIs(t, err, ErrBadPort)

	_, err = DecodePort(PortJSON{ID: "a", X: f(1)})
	assert.ErrorIs(t, err, ErrBadPort)

	_, err = DecodePort(PortJSON{ID: "a", Zone: &ZoneJSON{X: 0, Y: 0, Width: 0, Height: 5}})
	assert.ErrorIs(t, err, ErrBadPort)
}

func TestDecodePortsFailsWholeLoad(t *testing.T) {
	_, err := DecodePorts([]PortJSON{
		{ID: "ok", X: f(1), Y: f(2)},
		{ID: "broken"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPort)
	assert.Contains(t, err.Error(), "record 1")
}

func TestEncodePortOmitsLockedWhenFalse(t *testing.T) {
	data, err := json.Marshal(EncodePort(core.Port{
		ID: "in", Type: core.In, Geometry: core.Point{X: 1, Y: 2},
	}))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "locked")

	data, err = json.Marshal(EncodePort(core.Port{
		ID: "in", Type: core.In, Locked: true, Geometry: core.Point{X: 1, Y: 2},
	}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"locked":true`)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ports := []core.Port{
		{ID: "in", Type: core.In, Geometry: core.Point{X: 4, Y: 12.5}},
		{ID: "body", Type: core.Process, Locked: true,
			Geometry: core.Zone{X: 10, Y: 20, Width: 40.25, Height: 30}},
	}
	back, err := DecodePorts(EncodePorts(ports))
	require.NoError(t, err)
	assert.Equal(t, ports, back)
}

func TestEncodePortsGolden(t *testing.T) {
	ports := []core.Port{
		{ID: "in", Type: core.In, Locked: true, Geometry: core.Point{X: 4, Y: 12.5}},
		{ID: "body", Type: core.Process,
			Geometry: core.Zone{X: 10, Y: 20, Width: 40.25, Height: 30}},
	}
	data, err := json.MarshalIndent(EncodePorts(ports), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "ports", data)
}

func TestNewDocumentValidatesSize(t *testing.T) {
	_, err := NewDocument(0, 80, nil)
	assert.ErrorIs(t, err, ErrBadSize)

	_, err = NewDocument(80, -1, nil)
	assert.ErrorIs(t, err, ErrBadSize)

	doc, err := NewDocument(80, 60, []PortJSON{{ID: "in", X: f(1), Y: f(2)}})
	require.NoError(t, err)
	assert.Equal(t, 80.0, doc.VW)
	assert.Equal(t, 60.0, doc.VH)
	assert.Len(t, doc.Ports, 1)
}

func TestParseSVGSizeAttributes(t *testing.T) {
	w, h, err := ParseSVGSize([]byte(`<svg width="80" height="60"></svg>`))
	require.NoError(t, err)
	assert.Equal(t, 80.0, w)
	assert.Equal(t, 60.0, h)
}

func TestParseSVGSizeUnitSuffix(t *testing.T) {
	w, h, err := ParseSVGSize([]byte(`<svg width="480px" height="320.5px"></svg>`))
	require.NoError(t, err)
	assert.Equal(t, 480.0, w)
	assert.Equal(t, 320.5, h)
}

func TestParseSVGSizeViewBoxFallback(t *testing.T) {
	w, h, err := ParseSVGSize([]byte(`<svg viewBox="0 0 24 48"><rect/></svg>`))
	require.NoError(t, err)
	assert.Equal(t, 24.0, w)
	assert.Equal(t, 48.0, h)

	w, h, err = ParseSVGSize([]byte(`<svg viewBox="0,0,100,50"></svg>`))
	require.NoError(t, err)
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 50.0, h)
}

func TestParseSVGSizeMissing(t *testing.T) {
	_, _, err := ParseSVGSize([]byte(`<svg></svg>`))
	assert.ErrorIs(t, err, ErrBadSize)

	_, _, err = ParseSVGSize([]byte(`not xml at all <<<`))
	assert.Error(t, err)
}
