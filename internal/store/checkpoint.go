package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/cohort/internal/group"
	"github.com/roach88/cohort/internal/ir"
)

var (
	// ErrNotFound is returned when no checkpoint matches.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrDigestMismatch is returned when stored rows no longer encode to the
	// recorded digest.
	ErrDigestMismatch = errors.New("checkpoint digest mismatch")
)

// CheckpointInfo describes one stored checkpoint.
type CheckpointInfo struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	SimTime     float64    `json:"sim_time"`
	NextGroupID ir.GroupID `json:"next_group_id"`
	Version     string     `json:"version"`
	Digest      string     `json:"digest"`
	Seq         int64      `json:"seq"`
}

// WriteCheckpoint stores snap in one transaction and returns its info.
// The checkpoint id is a UUIDv7, so ids sort by creation.
func (s *Store) WriteCheckpoint(ctx context.Context, label string, simTime float64, snap group.Snapshot) (CheckpointInfo, error) {
	canonical, err := group.EncodeSnapshot(snap)
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: generate id: %w", err)
	}
	info := CheckpointInfo{
		ID:          id.String(),
		Label:       label,
		SimTime:     simTime,
		NextGroupID: snap.NextGroupID,
		Version:     snap.Version,
		Digest:      ir.CheckpointDigest(canonical),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_seq), 0) + 1 FROM checkpoints`).Scan(&info.Seq); err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints
		(id, label, sim_time, next_group_id, version, digest, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, info.ID, info.Label, info.SimTime, int(info.NextGroupID), info.Version, info.Digest, info.Seq)
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: insert checkpoint: %w", err)
	}

	if err := writeTypes(ctx, tx, info.ID, snap.GroupTypes); err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: %w", err)
	}
	if err := writeGroups(ctx, tx, info.ID, snap.Groups); err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: %w", err)
	}
	for i, ms := range snap.Memberships {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO memberships (checkpoint_id, ordinal, group_id, person_id)
			VALUES (?, ?, ?, ?)
		`, info.ID, i, int(ms.Group), int(ms.Person))
		if err != nil {
			return CheckpointInfo{}, fmt.Errorf("write checkpoint: insert membership: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return CheckpointInfo{}, fmt.Errorf("write checkpoint: commit: %w", err)
	}
	return info, nil
}

func writeTypes(ctx context.Context, tx *sql.Tx, checkpointID string, types []group.TypeSnapshot) error {
	for ti, ts := range types {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_types (checkpoint_id, ordinal, id) VALUES (?, ?, ?)
		`, checkpointID, ti, string(ts.ID))
		if err != nil {
			return fmt.Errorf("insert group type %q: %w", ts.ID, err)
		}
		for pi, ps := range ts.Properties {
			symbols, err := nullableJSON(ps.Symbols, len(ps.Symbols) > 0)
			if err != nil {
				return fmt.Errorf("property %q symbols: %w", ps.ID, err)
			}
			var def sql.NullString
			if ps.Default != nil {
				def, err = nullableJSON(*ps.Default, true)
				if err != nil {
					return fmt.Errorf("property %q default: %w", ps.ID, err)
				}
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO property_definitions
				(checkpoint_id, group_type, ordinal, id, kind, int_width, float_width, symbols, default_value, mutable, track_times)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, checkpointID, string(ts.ID), pi, string(ps.ID), ps.Kind, ps.IntWidth, ps.FloatWidth,
				symbols, def, ps.Mutable, ps.TrackTimes)
			if err != nil {
				return fmt.Errorf("insert property %q: %w", ps.ID, err)
			}
		}
	}
	return nil
}

func writeGroups(ctx context.Context, tx *sql.Tx, checkpointID string, groups []group.GroupSnapshot) error {
	for _, gs := range groups {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO groups (checkpoint_id, id, group_type) VALUES (?, ?, ?)
		`, checkpointID, int(gs.ID), string(gs.Type))
		if err != nil {
			return fmt.Errorf("insert group %d: %w", gs.ID, err)
		}
		for vi, vs := range gs.Values {
			value, err := ir.MarshalCanonical(vs.Value)
			if err != nil {
				return fmt.Errorf("group %d property %q: %w", gs.ID, vs.Property, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO property_values (checkpoint_id, group_id, ordinal, property_id, value)
				VALUES (?, ?, ?, ?, ?)
			`, checkpointID, int(gs.ID), vi, string(vs.Property), string(value))
			if err != nil {
				return fmt.Errorf("insert value %d/%q: %w", gs.ID, vs.Property, err)
			}
		}
	}
	return nil
}

// nullableJSON encodes v as canonical JSON, or NULL when present is false.
func nullableJSON(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ReadCheckpoint loads a checkpoint by id and verifies its digest.
// Returns ErrNotFound if no checkpoint has that id.
func (s *Store) ReadCheckpoint(ctx context.Context, id string) (group.Snapshot, CheckpointInfo, error) {
	info, err := s.scanInfo(s.db.QueryRowContext(ctx, `
		SELECT id, label, sim_time, next_group_id, version, digest, created_seq
		FROM checkpoints WHERE id = ?
	`, id))
	if err != nil {
		return group.Snapshot{}, CheckpointInfo{}, fmt.Errorf("read checkpoint %s: %w", id, err)
	}

	snap := group.Snapshot{
		Version:     info.Version,
		NextGroupID: info.NextGroupID,
	}
	if snap.GroupTypes, err = s.readTypes(ctx, id); err != nil {
		return group.Snapshot{}, CheckpointInfo{}, fmt.Errorf("read checkpoint %s: %w", id, err)
	}
	if snap.Groups, err = s.readGroups(ctx, id); err != nil {
		return group.Snapshot{}, CheckpointInfo{}, fmt.Errorf("read checkpoint %s: %w", id, err)
	}
	if snap.Memberships, err = s.readMemberships(ctx, id); err != nil {
		return group.Snapshot{}, CheckpointInfo{}, fmt.Errorf("read checkpoint %s: %w", id, err)
	}

	canonical, err := group.EncodeSnapshot(snap)
	if err != nil {
		return group.Snapshot{}, CheckpointInfo{}, fmt.Errorf("read checkpoint %s: %w", id, err)
	}
	if digest := ir.CheckpointDigest(canonical); digest != info.Digest {
		return group.Snapshot{}, CheckpointInfo{}, fmt.Errorf("read checkpoint %s: %w: stored %s, computed %s",
			id, ErrDigestMismatch, info.Digest, digest)
	}
	return snap, info, nil
}

// LatestCheckpoint returns the info of the most recently written checkpoint.
func (s *Store) LatestCheckpoint(ctx context.Context) (CheckpointInfo, error) {
	info, err := s.scanInfo(s.db.QueryRowContext(ctx, `
		SELECT id, label, sim_time, next_group_id, version, digest, created_seq
		FROM checkpoints ORDER BY created_seq DESC LIMIT 1
	`))
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("latest checkpoint: %w", err)
	}
	return info, nil
}

// LatestLabeled returns the most recent checkpoint written with label.
func (s *Store) LatestLabeled(ctx context.Context, label string) (CheckpointInfo, error) {
	info, err := s.scanInfo(s.db.QueryRowContext(ctx, `
		SELECT id, label, sim_time, next_group_id, version, digest, created_seq
		FROM checkpoints WHERE label = ? ORDER BY created_seq DESC LIMIT 1
	`, label))
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("latest checkpoint %q: %w", label, err)
	}
	return info, nil
}

// ListCheckpoints returns every checkpoint, oldest first.
// Returns an empty slice (not nil) if the store holds none.
func (s *Store) ListCheckpoints(ctx context.Context) ([]CheckpointInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, sim_time, next_group_id, version, digest, created_seq
		FROM checkpoints ORDER BY created_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	infos := []CheckpointInfo{}
	for rows.Next() {
		info, err := s.scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("list checkpoints: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checkpoints: iterate: %w", err)
	}
	return infos, nil
}

// DeleteCheckpoint removes a checkpoint and all of its rows.
func (s *Store) DeleteCheckpoint(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete checkpoint %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanInfo(row scanner) (CheckpointInfo, error) {
	var (
		info CheckpointInfo
		next int
	)
	err := row.Scan(&info.ID, &info.Label, &info.SimTime, &next, &info.Version, &info.Digest, &info.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return CheckpointInfo{}, ErrNotFound
	}
	if err != nil {
		return CheckpointInfo{}, fmt.Errorf("scan checkpoint: %w", err)
	}
	info.NextGroupID = ir.GroupID(next)
	return info, nil
}

func (s *Store) readTypes(ctx context.Context, checkpointID string) ([]group.TypeSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM group_types WHERE checkpoint_id = ? ORDER BY ordinal ASC
	`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query group types: %w", err)
	}
	types := []group.TypeSnapshot{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan group type: %w", err)
		}
		types = append(types, group.TypeSnapshot{ID: ir.GroupTypeID(id)})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate group types: %w", err)
	}

	// Properties are read per type after the type cursor is closed; the
	// store runs on a single connection.
	for i := range types {
		props, err := s.readProperties(ctx, checkpointID, types[i].ID)
		if err != nil {
			return nil, err
		}
		types[i].Properties = props
	}
	return types, nil
}

func (s *Store) readProperties(ctx context.Context, checkpointID string, typeID ir.GroupTypeID) ([]group.PropertySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, int_width, float_width, symbols, default_value, mutable, track_times
		FROM property_definitions
		WHERE checkpoint_id = ? AND group_type = ?
		ORDER BY ordinal ASC
	`, checkpointID, string(typeID))
	if err != nil {
		return nil, fmt.Errorf("query properties of %q: %w", typeID, err)
	}
	defer rows.Close()

	props := []group.PropertySnapshot{}
	for rows.Next() {
		var (
			ps      group.PropertySnapshot
			id      string
			symbols sql.NullString
			def     sql.NullString
		)
		err := rows.Scan(&id, &ps.Kind, &ps.IntWidth, &ps.FloatWidth, &symbols, &def, &ps.Mutable, &ps.TrackTimes)
		if err != nil {
			return nil, fmt.Errorf("scan property of %q: %w", typeID, err)
		}
		ps.ID = ir.PropertyID(id)
		if symbols.Valid {
			if err := json.Unmarshal([]byte(symbols.String), &ps.Symbols); err != nil {
				return nil, fmt.Errorf("property %q symbols: %w", id, err)
			}
		}
		if def.Valid {
			tv, err := decodeTagged(def.String)
			if err != nil {
				return nil, fmt.Errorf("property %q default: %w", id, err)
			}
			ps.Default = &tv
		}
		props = append(props, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties of %q: %w", typeID, err)
	}
	return props, nil
}

func (s *Store) readGroups(ctx context.Context, checkpointID string) ([]group.GroupSnapshot, error) {
	values, err := s.readValues(ctx, checkpointID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_type FROM groups WHERE checkpoint_id = ? ORDER BY id ASC
	`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []group.GroupSnapshot{}
	for rows.Next() {
		var (
			id     int
			typeID string
		)
		if err := rows.Scan(&id, &typeID); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		gs := group.GroupSnapshot{ID: ir.GroupID(id), Type: ir.GroupTypeID(typeID), Values: values[ir.GroupID(id)]}
		if gs.Values == nil {
			gs.Values = []group.ValueSnapshot{}
		}
		groups = append(groups, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

func (s *Store) readValues(ctx context.Context, checkpointID string) (map[ir.GroupID][]group.ValueSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_id, property_id, value FROM property_values
		WHERE checkpoint_id = ?
		ORDER BY group_id ASC, ordinal ASC
	`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	values := make(map[ir.GroupID][]group.ValueSnapshot)
	for rows.Next() {
		var (
			id   int
			prop string
			raw  string
		)
		if err := rows.Scan(&id, &prop, &raw); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		tv, err := decodeTagged(raw)
		if err != nil {
			return nil, fmt.Errorf("group %d property %q: %w", id, prop, err)
		}
		g := ir.GroupID(id)
		values[g] = append(values[g], group.ValueSnapshot{Property: ir.PropertyID(prop), Value: tv})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}
	return values, nil
}

func (s *Store) readMemberships(ctx context.Context, checkpointID string) ([]group.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_id, person_id FROM memberships
		WHERE checkpoint_id = ?
		ORDER BY ordinal ASC
	`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	members := []group.Membership{}
	for rows.Next() {
		var g, p int
		if err := rows.Scan(&g, &p); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, group.Membership{Group: ir.GroupID(g), Person: ir.PersonID(p)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return members, nil
}

// decodeTagged parses a stored tagged value and normalizes its payload to
// the Go types Export produces.
func decodeTagged(raw string) (ir.TaggedValue, error) {
	var tv ir.TaggedValue
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&tv); err != nil {
		return ir.TaggedValue{}, fmt.Errorf("decode value: %w", err)
	}
	v, err := tv.Untag()
	if err != nil {
		return ir.TaggedValue{}, err
	}
	return ir.Tag(v), nil
}
