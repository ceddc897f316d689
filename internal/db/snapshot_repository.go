package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/snapshot"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SlotInfo describes a saved slot without decoding its payload.
type SlotInfo struct {
	Slot     string
	BattleID uuid.UUID
	Tick     int64
	Digest   string
	SavedAt  time.Time
}

// BattlerRow is the queryable summary of a saved battler.
type BattlerRow struct {
	BattlerID model.BattlerID
	Kind      model.Kind
	RecordID  int32
	Player    bool
	Level     int32
	HP        int32
	MP        int32
	TP        int32
}

// SnapshotRepository stores encoded battle snapshots by slot. The encoded
// document is the source of truth; battler and proficiency rows are
// written alongside it for queries.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save writes doc into slot, replacing the previous content of the slot.
func (r *SnapshotRepository) Save(ctx context.Context, slot string, doc *snapshot.Document) error {
	battleID, err := uuid.Parse(doc.BattleID)
	if err != nil {
		return fmt.Errorf("saving slot %q: battle id: %w", slot, err)
	}
	raw, err := snapshot.Encode(doc)
	if err != nil {
		return fmt.Errorf("saving slot %q: %w", slot, err)
	}
	digest, err := snapshot.Digest(raw)
	if err != nil {
		return fmt.Errorf("saving slot %q: %w", slot, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "slot", slot, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `
		INSERT INTO battle_snapshots (slot, battle_id, tick, digest, payload, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slot) DO UPDATE SET
			battle_id = EXCLUDED.battle_id,
			tick = EXCLUDED.tick,
			digest = EXCLUDED.digest,
			payload = EXCLUDED.payload,
			saved_at = EXCLUDED.saved_at`,
		slot, battleID.String(), int64(doc.Tick), digest, raw, doc.SavedAt,
	); err != nil {
		return fmt.Errorf("upserting slot %q: %w", slot, err)
	}

	// proficiency rows cascade
	if _, err := tx.Exec(ctx, `DELETE FROM snapshot_battlers WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("deleting battlers of slot %q: %w", slot, err)
	}

	battlerRows := make([][]any, 0, len(doc.Battlers))
	var profRows [][]any
	for _, b := range doc.Battlers {
		battlerRows = append(battlerRows, []any{slot, int64(b.ID), int16(b.Kind), b.RecordID, b.Player, b.Level, b.HP, b.MP, b.TP})
		for skill, v := range b.Proficiencies {
			profRows = append(profRows, []any{slot, int64(b.ID), int32(skill), v})
		}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"snapshot_battlers"},
		[]string{"slot", "battler_id", "kind", "record_id", "player", "level", "hp", "mp", "tp"},
		pgx.CopyFromRows(battlerRows),
	); err != nil {
		return fmt.Errorf("copying battlers of slot %q: %w", slot, err)
	}
	if len(profRows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"snapshot_proficiencies"},
			[]string{"slot", "battler_id", "skill_id", "proficiency"},
			pgx.CopyFromRows(profRows),
		); err != nil {
			return fmt.Errorf("copying proficiencies of slot %q: %w", slot, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing slot %q: %w", slot, err)
	}
	slog.Debug("snapshot saved", "slot", slot, "battle", doc.BattleID, "tick", doc.Tick, "battlers", len(doc.Battlers))
	return nil
}

// Load reads and verifies the document saved in slot.
func (r *SnapshotRepository) Load(ctx context.Context, slot string) (*snapshot.Document, error) {
	var (
		digest string
		raw    []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT digest, payload FROM battle_snapshots WHERE slot = $1`, slot,
	).Scan(&digest, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading slot %q: %w", slot, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("querying slot %q: %w", slot, err)
	}

	stored, err := snapshot.Digest(raw)
	if err != nil {
		return nil, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	if stored != digest {
		return nil, fmt.Errorf("loading slot %q: %w", slot, snapshot.ErrDigestMismatch)
	}
	doc, err := snapshot.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	return doc, nil
}

// Delete removes slot. Reports whether it existed.
func (r *SnapshotRepository) Delete(ctx context.Context, slot string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM battle_snapshots WHERE slot = $1`, slot)
	if err != nil {
		return false, fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns every saved slot, newest first.
func (r *SnapshotRepository) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT slot, battle_id::text, tick, digest, saved_at
		FROM battle_snapshots
		ORDER BY saved_at DESC, slot`)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var (
			info     SlotInfo
			battleID string
		)
		if err := rows.Scan(&info.Slot, &battleID, &info.Tick, &info.Digest, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning slot row: %w", err)
		}
		if info.BattleID, err = uuid.Parse(battleID); err != nil {
			return nil, fmt.Errorf("parsing battle id of slot %q: %w", info.Slot, err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slot rows: %w", err)
	}
	return out, nil
}

// Battlers returns the battler summaries of slot ordered by id.
func (r *SnapshotRepository) Battlers(ctx context.Context, slot string) ([]BattlerRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT battler_id, kind, record_id, player, level, hp, mp, tp
		FROM snapshot_battlers
		WHERE slot = $1
		ORDER BY battler_id`, slot)
	if err != nil {
		return nil, fmt.Errorf("querying battlers of slot %q: %w", slot, err)
	}
	defer rows.Close()

	var out []BattlerRow
	for rows.Next() {
		var (
			row  BattlerRow
			id   int64
			kind int16
		)
		if err := rows.Scan(&id, &kind, &row.RecordID, &row.Player, &row.Level, &row.HP, &row.MP, &row.TP); err != nil {
			return nil, fmt.Errorf("scanning battler row: %w", err)
		}
		row.BattlerID = model.BattlerID(id)
		row.Kind = model.Kind(kind)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battler rows: %w", err)
	}
	return out, nil
}

// Proficiencies returns the saved proficiencies of one battler in slot.
func (r *SnapshotRepository) Proficiencies(ctx context.Context, slot string, id model.BattlerID) (map[data.SkillID]int32, error) {
	rows, err := r.db.Query(ctx, `
		SELECT skill_id, proficiency
		FROM snapshot_proficiencies
		WHERE slot = $1 AND battler_id = $2`, slot, int64(id))
	if err != nil {
		return nil, fmt.Errorf("querying proficiencies of %d in slot %q: %w", id, slot, err)
	}
	defer rows.Close()

	out := make(map[data.SkillID]int32)
	for rows.Next() {
		var skill, v int32
		if err := rows.Scan(&skill, &v); err != nil {
			return nil, fmt.Errorf("scanning proficiency row: %w", err)
		}
		out[data.SkillID(skill)] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating proficiency rows: %w", err)
	}
	return out, nil
}
