package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGolden_Pairing(t *testing.T) {
	_, err := RunWithGolden(t, pairingScenario())
	require.NoError(t, err)
}

func TestGolden_Windowed(t *testing.T) {
	_, err := RunWithGolden(t, windowedScenario())
	require.NoError(t, err)
}

func TestGolden_Recovery(t *testing.T) {
	_, err := RunWithGolden(t, recoveryScenario())
	require.NoError(t, err)
}
