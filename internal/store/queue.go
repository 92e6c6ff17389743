package store

import (
	"context"
	"fmt"
	"time"
)

// MutationOp is the kind of a pending write operation.
type MutationOp string

const (
	OpCreate MutationOp = "create"
	OpUpdate MutationOp = "update"
	OpDelete MutationOp = "delete"
)

// Valid reports whether op is a known operation kind.
func (op MutationOp) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Mutation is one queued write. Seq is assigned by the store on
// enqueue and is monotonically increasing; iteration by Seq is FIFO
// order. ID is a client-generated idempotency key (UUID) that also
// dedupes re-enqueues of the same logical write.
//
// A Mutation row is never updated in place: its lifecycle is insert on
// enqueue, delete on confirmed replay.
type Mutation struct {
	Seq        int64
	ID         string
	Op         MutationOp
	Target     string
	Payload    []byte
	ClientTime time.Time
}

// EnqueueMutation appends m to the queue and returns its sequence
// number. The write is durable before this returns; callers may treat
// the mutation as accepted even though it has not been sent.
//
// Enqueue is idempotent on Mutation.ID: re-enqueueing an ID already in
// the queue returns the existing sequence number without inserting.
func (s *Store) EnqueueMutation(ctx context.Context, m Mutation) (int64, error) {
	if !m.Op.Valid() {
		return 0, fmt.Errorf("enqueue mutation: unknown op %q", m.Op)
	}
	if m.ID == "" {
		return 0, fmt.Errorf("enqueue mutation: id is required")
	}
	if m.ClientTime.IsZero() {
		m.ClientTime = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_mutations (id, op, target, payload, client_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		m.ID,
		string(m.Op),
		m.Target,
		m.Payload,
		m.ClientTime.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueue mutation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("enqueue mutation: rows affected: %w", err)
	}
	if affected > 0 {
		seq, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("enqueue mutation: last insert id: %w", err)
		}
		return seq, nil
	}

	// Conflict - the ID is already queued, return the existing seq.
	var seq int64
	err = s.db.QueryRowContext(ctx, `
		SELECT seq FROM pending_mutations WHERE id = ?
	`, m.ID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("enqueue mutation: select existing: %w", err)
	}
	return seq, nil
}

// PendingMutations returns the queue in FIFO order.
func (s *Store) PendingMutations(ctx context.Context) ([]Mutation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, op, target, payload, client_time
		FROM pending_mutations
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("pending mutations: %w", err)
	}
	defer rows.Close()

	var pending []Mutation
	for rows.Next() {
		var m Mutation
		var op, clientTime string
		if err := rows.Scan(&m.Seq, &m.ID, &op, &m.Target, &m.Payload, &clientTime); err != nil {
			return nil, fmt.Errorf("pending mutations: scan: %w", err)
		}
		m.Op = MutationOp(op)
		m.ClientTime, err = time.Parse(time.RFC3339Nano, clientTime)
		if err != nil {
			return nil, fmt.Errorf("pending mutations: parse client_time: %w", err)
		}
		pending = append(pending, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending mutations: %w", err)
	}
	return pending, nil
}

// RemoveMutation deletes a mutation after its confirmed replay.
// Removing an already-removed sequence is a no-op.
func (s *Store) RemoveMutation(ctx context.Context, seq int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM pending_mutations WHERE seq = ?
	`, seq)
	if err != nil {
		return fmt.Errorf("remove mutation %d: %w", seq, err)
	}
	return nil
}

// QueueLen returns the number of pending mutations.
func (s *Store) QueueLen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_mutations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("queue len: %w", err)
	}
	return n, nil
}
