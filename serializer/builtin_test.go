package serializer_test

import (
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmenegatti/litemap/serializer"
)

// fakeRow serves stored values back through the Row contract. Tests store
// values in their column representation (int64, float64, string or nil).
type fakeRow struct {
	cols []string
	vals []any
}

func (r fakeRow) ColumnIndex(name string) int {
	for i, c := range r.cols {
		if c == name {
			return i
		}
	}
	return -1
}

func (r fakeRow) IsNull(i int) bool { return i < 0 || i >= len(r.vals) || r.vals[i] == nil }

func (r fakeRow) Int64(i int) int64 {
	if r.IsNull(i) {
		return 0
	}
	return r.vals[i].(int64)
}

func (r fakeRow) Float64(i int) float64 {
	if r.IsNull(i) {
		return 0
	}
	return r.vals[i].(float64)
}

func (r fakeRow) String(i int) string {
	if r.IsNull(i) {
		return ""
	}
	return r.vals[i].(string)
}

// roundTrip stores v through s and reads it back through a row built from
// the stored column value.
func roundTrip(t *testing.T, s serializer.Serializer, v any) any {
	t.Helper()
	values := make(map[string]any)
	require.NoError(t, s.GoToValues("c", values, v))
	got, err := s.SQLToGo(fakeRow{cols: []string{"c"}, vals: []any{values["c"]}}, 0)
	require.NoError(t, err)
	return got
}

func resolve(t *testing.T, v any) serializer.Serializer {
	t.Helper()
	s, err := serializer.NewRegistry().Resolve(reflect.TypeOf(v), true)
	require.NoError(t, err)
	return s
}

func TestBuiltinRoundTrips(t *testing.T) {
	type level string
	type weekday int

	now := time.Date(2024, 11, 3, 17, 42, 9, 123456789, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"long", int64(42), int64(42)},
		{"long negative", int64(-7), int64(-7)},
		{"integer widens", int32(9), int64(9)},
		{"double", 3.25, 3.25},
		{"bool true", true, true},
		{"bool false", false, false},
		{"string", "hello", "hello"},
		{"string empty", "", ""},
		{"date as string", now, now},
		{"enum string", level("high"), level("high")},
		{"enum string via pointer", ptr(level("low")), level("low")},
		{"named int", weekday(3), int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolve(t, tt.in)
			assert.Equal(t, tt.want, roundTrip(t, s, tt.in))
		})
	}
}

func TestBuiltinNullHandling(t *testing.T) {
	for _, v := range []any{
		(*int64)(nil), (*float64)(nil), (*bool)(nil), (*string)(nil), (*time.Time)(nil),
	} {
		s := resolve(t, v)
		values := make(map[string]any)
		require.NoError(t, s.GoToValues("c", values, v))
		assert.Nil(t, values["c"], "%T must store NULL", v)

		got, err := s.SQLToGo(fakeRow{cols: []string{"c"}, vals: []any{nil}}, 0)
		require.NoError(t, err)
		assert.Nil(t, got, "%T must read NULL back as nil", v)
	}
}

func TestDateSerializers(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	local := time.Date(2024, 6, 1, 12, 0, 0, 999999999, loc)

	t.Run("string stores fixed-width utc", func(t *testing.T) {
		s := resolve(t, time.Time{})
		values := make(map[string]any)
		require.NoError(t, s.GoToValues("c", values, local))
		assert.Equal(t, "2024-06-01T11:00:00.999999999Z", values["c"])

		got := roundTrip(t, s, local)
		assert.True(t, local.Equal(got.(time.Time)))
		assert.Equal(t, time.UTC, got.(time.Time).Location())
	})

	t.Run("string rejects malformed column", func(t *testing.T) {
		s := resolve(t, time.Time{})
		_, err := s.SQLToGo(fakeRow{cols: []string{"c"}, vals: []any{"not a date"}}, 0)
		assert.Error(t, err)
	})

	t.Run("timestamp stores unix nanos", func(t *testing.T) {
		s := serializer.ForKind(serializer.KindDateAsTimestamp, nil)
		values := make(map[string]any)
		require.NoError(t, s.GoToValues("c", values, local))
		assert.Equal(t, local.UnixNano(), values["c"])

		got := roundTrip(t, s, local)
		assert.True(t, local.Equal(got.(time.Time)))
	})
}

func TestLibraryDefaultRoundTrips(t *testing.T) {
	id := uuid.MustParse("0d1cd3de-8f5b-43fb-a697-05f7532fa5f2")
	s := resolve(t, uuid.UUID{})
	assert.Equal(t, id, roundTrip(t, s, id))
	assert.Equal(t, id, roundTrip(t, s, &id))

	r := new(big.Rat).SetFrac64(10, 3)
	s = resolve(t, (*big.Rat)(nil))
	got := roundTrip(t, s, r)
	assert.Zero(t, r.Cmp(got.(*big.Rat)))

	values := make(map[string]any)
	require.NoError(t, s.GoToValues("c", values, (*big.Rat)(nil)))
	assert.Nil(t, values["c"])
}

func TestLiteralToSQL(t *testing.T) {
	tests := []struct {
		name    string
		proto   any
		literal string
		want    string
		wantErr bool
	}{
		{"integer passes through", int64(0), "42", "42", false},
		{"integer rejects text", int64(0), "abc", "", true},
		{"float passes through", float64(0), "1.5", "1.5", false},
		{"bool true becomes one", false, "true", "1", false},
		{"bool false becomes zero", false, "false", "0", false},
		{"bool rejects junk", false, "maybe", "", true},
		{"string is quoted", "", "it's", "'it''s'", false},
		{"date validates layout", time.Time{}, "2024-06-01T11:00:00.000000000Z", "'2024-06-01T11:00:00.000000000Z'", false},
		{"date rejects bare date", time.Time{}, "2024-06-01", "", true},
		{"uuid is quoted", uuid.UUID{}, "0d1cd3de-8f5b-43fb-a697-05f7532fa5f2", "'0d1cd3de-8f5b-43fb-a697-05f7532fa5f2'", false},
		{"uuid rejects junk", uuid.UUID{}, "zzz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve(t, tt.proto).LiteralToSQL(tt.literal)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoToValuesTypeMismatch(t *testing.T) {
	s := resolve(t, int64(0))
	err := s.GoToValues("c", make(map[string]any), "not a number")
	assert.Error(t, err)

	s = resolve(t, time.Time{})
	err = s.GoToValues("c", make(map[string]any), 12)
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
