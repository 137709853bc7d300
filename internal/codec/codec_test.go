package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smilemakc/bars/internal/domain"
)

func sampleAerodrome() domain.Aerodrome {
	return domain.Aerodrome{
		ICAO:  "TEST",
		Nodes: []domain.Node{{ID: "N0"}, {ID: "N1"}},
		Profiles: []domain.Profile{
			{ID: "default", Nodes: []domain.NodeCondition{{Kind: domain.NodeFixed, FixedState: domain.NodeOn}, {Kind: domain.NodeDirect}}},
		},
	}
}

func TestConfigRoundTrip(t *testing.T) {
	name := "Test Airfield"
	version := "1"
	cfg := &domain.Config{
		Name:       &name,
		Version:    &version,
		Aerodromes: []domain.Aerodrome{sampleAerodrome()},
	}

	data, err := EncodeConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, Magic[:], data[:8])

	got, err := DecodeConfig(data)
	require.NoError(t, err)
	require.Equal(t, *cfg.Name, *got.Name)
	require.Len(t, got.Aerodromes, 1)
	require.Equal(t, "TEST", got.Aerodromes[0].ICAO)
}

func TestMapsRoundTrip(t *testing.T) {
	maps := []domain.Map{
		{Background: domain.Color{R: 10, G: 20, B: 30, A: 255}, Views: []domain.View{{Name: "overview"}}},
	}

	data, err := EncodeMaps(maps)
	require.NoError(t, err)

	got, err := DecodeMaps(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Views, 1)
	require.Equal(t, "overview", got[0].Views[0].Name)
}

func TestDecodeConfigRejectsWrongVersion(t *testing.T) {
	maps := []domain.Map{{Views: []domain.View{{Name: "overview"}}}}
	data, err := EncodeMaps(maps)
	require.NoError(t, err)

	_, err = DecodeConfig(data)
	require.Error(t, err)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := []byte("not-a-bars-container-at-all")
	_, err := DecodeConfig(data)
	require.Error(t, err)
}

func TestBareAerodromeRoundTrip(t *testing.T) {
	a := sampleAerodrome()

	data, err := EncodeBare(&a)
	require.NoError(t, err)

	got, err := DecodeBare(data)
	require.NoError(t, err)
	require.Equal(t, "TEST", got.ICAO)
	require.Len(t, got.Nodes, 2)
}
