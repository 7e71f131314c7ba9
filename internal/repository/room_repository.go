package repository // repository holds data access logic for the catalog

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors wraps sql.ErrNoRows
	"fmt"          // fmt annotates errors with the failing step
	"time"         // time stamps imports

	"github.com/iliyamo/event-space-recommender/internal/model"
)

// Import is one row of the import history.
type Import struct {
	ID         uint64    `json:"id"`          // ID is the auto-increment key
	Version    string    `json:"version"`     // Version is the catalog content hash
	RoomCount  int       `json:"room_count"`  // RoomCount is the number of rooms written
	ImportedAt time.Time `json:"imported_at"` // ImportedAt is when ReplaceAll committed
}

// RoomRepo stores the validated catalog.  Rooms are only ever written as a
// whole, mirroring the catalog's replace-wholesale semantics.
type RoomRepo struct {
	db  *sql.DB          // db is the underlying database connection
	now func() time.Time // now stamps imports; replaced in tests
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ReplaceAll swaps the stored rooms for rooms inside one transaction and
// records the import.  On any error nothing changes.
func (r *RoomRepo) ReplaceAll(ctx context.Context, rooms []model.Room, version string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// capacities first; the FK cascade would cover it but keeps the order explicit
	if _, err = tx.ExecContext(ctx, `DELETE FROM room_capacities`); err != nil {
		return fmt.Errorf("clear capacities: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}

	const qRoom = `INSERT INTO rooms (id, name, area, sq_ft, position) VALUES (?, ?, ?, ?, ?)`
	const qCap = `INSERT INTO room_capacities (room_id, style, capacity) VALUES (?, ?, ?)`
	for i, room := range rooms {
		if _, err = tx.ExecContext(ctx, qRoom, room.ID, room.Name, room.Area, room.SqFt, i); err != nil {
			return fmt.Errorf("insert room %s: %w", room.ID, err)
		}
		for _, style := range room.Styles() {
			if _, err = tx.ExecContext(ctx, qCap, room.ID, string(style), room.Capacities[style]); err != nil {
				return fmt.Errorf("insert capacity %s/%s: %w", room.ID, style, err)
			}
		}
	}

	const qImport = `INSERT INTO catalog_imports (version, room_count, imported_at) VALUES (?, ?, ?)`
	if _, err = tx.ExecContext(ctx, qImport, version, len(rooms), r.now()); err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadAll reads the stored rooms in their original order.  Styles the
// model no longer knows are skipped.  It returns ErrEmptyCatalog when
// nothing is stored.
func (r *RoomRepo) LoadAll(ctx context.Context) ([]model.Room, error) {
	const qRooms = `SELECT id, name, area, sq_ft FROM rooms ORDER BY position`
	rows, err := r.db.QueryContext(ctx, qRooms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	byID := map[string]int{}
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Area, &room.SqFt); err != nil {
			return nil, err
		}
		room.Capacities = map[model.SeatingStyle]int{}
		byID[room.ID] = len(out)
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmptyCatalog
	}

	const qCaps = `SELECT room_id, style, capacity FROM room_capacities`
	caps, err := r.db.QueryContext(ctx, qCaps)
	if err != nil {
		return nil, err
	}
	defer caps.Close()
	for caps.Next() {
		var id, style string
		var n int
		if err := caps.Scan(&id, &style, &n); err != nil {
			return nil, err
		}
		st, ok := model.LookupSeatingStyle(style)
		if !ok {
			continue
		}
		if i, ok := byID[id]; ok {
			out[i].Capacities[st] = n
		}
	}
	return out, caps.Err()
}

// LatestImport returns the most recent import, or ErrNoImport.
func (r *RoomRepo) LatestImport(ctx context.Context) (*Import, error) {
	const q = `SELECT id, version, room_count, imported_at FROM catalog_imports ORDER BY id DESC LIMIT 1`
	var im Import
	err := r.db.QueryRowContext(ctx, q).Scan(&im.ID, &im.Version, &im.RoomCount, &im.ImportedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoImport
		}
		return nil, err
	}
	return &im, nil
}
