package fx

import (
	"testing"
	"tournament-elo/internal/constants"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestLifecycle_StartTimeoutCoversRefresh(t *testing.T) {
	app := fx.New(Lifecycle, fx.NopLogger)
	require.NoError(t, app.Err())
	require.Equal(t, constants.StartTimeout, app.StartTimeout())
	require.Greater(t, app.StartTimeout(), constants.RefreshTimeout)
}
