package postgres

import (
	"errors"
	"fmt"
	"testing"

	"innkeep/internal/store"
	"innkeep/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, store.ErrNotFound},
		{"exclusion violation", &pgconn.PgError{Code: codeExclusionViolation}, store.ErrConflict},
		{"unique violation", &pgconn.PgError{Code: codeUniqueViolation}, store.ErrConflict},
		{"serialization failure", &pgconn.PgError{Code: codeSerializationFailure}, store.ErrBusy},
		{"deadlock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: codeDeadlockDetected}), store.ErrBusy},
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, store.ErrInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, mapError("op", nil))

	plain := errors.New("connection reset")
	got := mapError("op", plain)
	assert.ErrorIs(t, got, plain)
	assert.NotErrorIs(t, got, store.ErrConflict)
	assert.NotErrorIs(t, got, store.ErrNotFound)
	assert.NotErrorIs(t, got, store.ErrBusy)

	syntax := &pgconn.PgError{Code: "42601"}
	assert.NotErrorIs(t, mapError("op", syntax), store.ErrConflict)

	deadlock := mapError("op", &pgconn.PgError{Code: codeDeadlockDetected})
	assert.NotErrorIs(t, deadlock, store.ErrConflict, "lock contention says nothing about the dates")
}

func TestRoomWhere(t *testing.T) {
	available := false

	tests := []struct {
		name      string
		filter    model.RoomFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty filter",
			filter:    model.RoomFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "hotel only",
			filter:    model.RoomFilter{HotelID: "h1"},
			wantWhere: " WHERE hotel_id = $1",
			wantArgs:  []any{"h1"},
		},
		{
			name:      "type and availability",
			filter:    model.RoomFilter{RoomType: model.RoomTypeSuite, Available: &available},
			wantWhere: " WHERE room_type = $1 AND availability = $2",
			wantArgs:  []any{"Suite", false},
		},
		{
			name:      "all fields",
			filter:    model.RoomFilter{HotelID: "h1", RoomType: model.RoomTypeSingle, Available: &available},
			wantWhere: " WHERE hotel_id = $1 AND room_type = $2 AND availability = $3",
			wantArgs:  []any{"h1", "Single", false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := roomWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(store.Page{Limit: 0}))
	assert.Nil(t, limitArg(store.Page{Limit: -1}))

	got := limitArg(store.Page{Limit: 25, Offset: 50})
	if assert.NotNil(t, got) {
		assert.Equal(t, 25, *got)
	}
}
