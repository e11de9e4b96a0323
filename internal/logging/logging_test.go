package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitProductionLogger(t *testing.T) {
	require.NoError(t, Init(false))
	require.NotNil(t, GetZapLogger())
	require.NotNil(t, GetSugaredLogger())
}

func TestInitDevelopmentLogger(t *testing.T) {
	require.NoError(t, Init(true))
	require.NotNil(t, GetSugaredLogger())
}

func TestConvenienceFunctionsDoNotPanic(t *testing.T) {
	require.NoError(t, Init(true))
	Debug("debug message")
	Debugf("debug %d", 1)
	Debugw("debug", "key", "value")
	Info("info message")
	Warn("warn message")
	Error("error message")
	Sync()
}

func TestLazyFallbackWithoutInit(t *testing.T) {
	log = nil
	baseLogger = nil
	require.NotNil(t, GetSugaredLogger())
}
