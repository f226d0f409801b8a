package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestZapWrapper_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	scoped := log.WithFields(map[string]interface{}{"taskType": "find-matches"})
	scoped.Info("job completed", map[string]interface{}{"results": 20, "jobKey": int64(7)})
	scoped.WithError(errors.New("boom")).Error("job failed", nil)
	log.Debug("debug line", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "find-matches", first["taskType"])
	assert.EqualValues(t, 20, first["results"])
	assert.Equal(t, "job completed", entries[0].Message)

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestMapToZapFields_SortedKeys(t *testing.T) {
	fields := mapToZapFields(map[string]interface{}{"zeta": 1, "alpha": 2, "mid": errors.New("x")})

	require.Len(t, fields, 3)
	assert.Equal(t, "alpha", fields[0].Key)
	assert.Equal(t, "mid", fields[1].Key)
	assert.Equal(t, "zeta", fields[2].Key)
	assert.Nil(t, mapToZapFields(nil))
}

func TestNewStructured_TagsService(t *testing.T) {
	assert.NotNil(t, NewStructured("unimatch", "info", "json"))
	assert.NotNil(t, NewNoOpLogger())
}
