package litemap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmenegatti/litemap"
	"github.com/chmenegatti/litemap/metadata"
	"github.com/chmenegatti/litemap/serializer"
)

// unixStub stores times as whole unix seconds, coarser than any built-in.
type unixStub struct{}

func (unixStub) StorageType() serializer.StorageType { return serializer.StorageInteger }

func (unixStub) SQLToGo(row serializer.Row, i int) (any, error) {
	if row.IsNull(i) {
		return nil, nil
	}
	return time.Unix(row.Int64(i), 0).UTC(), nil
}

func (unixStub) GoToValues(key string, values map[string]any, v any) error {
	if v == nil {
		values[key] = nil
		return nil
	}
	values[key] = v.(time.Time).Unix()
	return nil
}

func (unixStub) LiteralToSQL(literal string) (string, error) { return literal, nil }

func TestRegisterSerializerTakesEffectImmediately(t *testing.T) {
	t.Cleanup(func() {
		litemap.UnregisterSerializer(time.Time{})
		metadata.ClearCache()
	})

	type visit struct {
		ID int64     `litemap:"pk;autoIncrement"`
		At time.Time
	}

	// Built-in handling first: stored as text.
	cfg, err := metadata.Parse(&visit{})
	require.NoError(t, err)
	assert.Equal(t, serializer.StorageText, cfg.FieldsByColumn["at"].Serializer.StorageType())

	// Registration evicts cached configurations, so the very next parse
	// resolves the custom serializer without an explicit evict.
	litemap.RegisterSerializer(time.Time{}, unixStub{})
	cfg, err = metadata.Parse(&visit{})
	require.NoError(t, err)
	assert.Equal(t, unixStub{}, cfg.FieldsByColumn["at"].Serializer)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	values, err := litemap.ToValues(&visit{ID: 1, At: at}, true, true)
	require.NoError(t, err)
	assert.Equal(t, at.Unix(), values["at"])

	// Unregistering restores built-in handling the same way.
	litemap.UnregisterSerializer(time.Time{})
	cfg, err = metadata.Parse(&visit{})
	require.NoError(t, err)
	assert.Equal(t, serializer.StorageText, cfg.FieldsByColumn["at"].Serializer.StorageType())
}

func TestSetLoggerNilResets(t *testing.T) {
	// Must not panic; a nil logger falls back to the no-op one.
	litemap.SetLogger(nil)
}
