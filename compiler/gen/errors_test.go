package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("RootTypeName", "1x", "must be a valid identifier")

		assert.Contains(t, err.Error(), "veloxts: config error")
		assert.Contains(t, err.Error(), "RootTypeName")
		assert.Contains(t, err.Error(), "1x")
		assert.Contains(t, err.Error(), "must be a valid identifier")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Logger", nil, "cannot be nil")
		assert.Equal(t, `veloxts: config error for "Logger": cannot be nil`, err.Error())
	})

	t.Run("Cause as reason", func(t *testing.T) {
		cause := errors.New("no such file")
		err := NewConfigError("path", "x.yaml", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "no such file")
	})

	t.Run("Message and cause", func(t *testing.T) {
		err := &ConfigError{Option: "path", Message: "read", Cause: errors.New("denied")}
		assert.Equal(t, `veloxts: config error for "path": read: denied`, err.Error())
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := NewConfigError("Target", nil, "no output path")
		assert.True(t, errors.Is(err, ErrMissingConfig))
		assert.False(t, errors.Is(err, ErrSourceFailed))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", NewConfigError("Target", nil, "x"))
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestSourceError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewSourceError("rest", "http://localhost:8055", "fetch fields", cause)

		assert.Equal(t, "veloxts: source error in rest (http://localhost:8055): fetch fields: connection refused", err.Error())
	})

	t.Run("Error message with source only", func(t *testing.T) {
		err := &SourceError{Source: "file"}
		assert.Equal(t, "veloxts: source error in file", err.Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSourceError("sql", "postgres", "", cause)

		require.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrSourceFailed))
		assert.True(t, IsSourceError(err))
		assert.False(t, IsSourceError(cause))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewGenerationError("write", "types.ts", "replace output", cause)

		assert.Contains(t, err.Error(), "veloxts: generation error")
		assert.Contains(t, err.Error(), "phase write")
		assert.Contains(t, err.Error(), "file: types.ts")
		assert.Contains(t, err.Error(), "replace output")
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("Error message with phase only", func(t *testing.T) {
		err := &GenerationError{Phase: "synth"}
		assert.Equal(t, "veloxts: generation error in phase synth", err.Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewGenerationError("write", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, IsGenerationError(err))
		assert.False(t, IsGenerationError(NewConfigError("x", nil, "y")))
	})
}

func TestDiagnostics(t *testing.T) {
	require := require.New(t)
	var d Diagnostics
	require.False(d.HasWarnings())

	d.AddInfo(CodeHeuristicRelation, "posts", "tags", "resolved")
	require.False(d.HasWarnings())
	d.AddWarning(CodeNameCollision, "categories", "", "type name taken")
	d.AddWarning(CodeUnresolvedAlias, "posts", "zzz", "omitted")
	require.True(d.HasWarnings())
	require.Len(d.Warnings, 2)
	require.Len(d.Infos, 1)
	require.Len(d.ByCode(CodeHeuristicRelation), 1)
	require.Empty(d.ByCode("other"))

	require.Equal("categories: [name-collision] type name taken", d.Warnings[0].String())
	require.Equal("posts.zzz: [unresolved-alias] omitted", d.Warnings[1].String())
	require.Equal("plain", Diagnostic{Message: "plain"}.String())
}
