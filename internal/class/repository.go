package class

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrSessionAlreadyCancelled = errors.New("session not found or already cancelled")

// pq error code for a table that does not exist; the optional
// trainer_profiles feature degrades instead of failing the read.
const pqUndefinedTable = "42P01"

const trainerJSON = `
	CASE WHEN t.id IS NULL THEN NULL
	     ELSE json_build_object('id', t.id, 'name', t.name, 'last_name', t.last_name)
	END`

const classColumns = `
	c.id, c.title, c.slug, c.description, c.trainer_id, c.level, c.duration_min,
	c.capacity, c.cover_url, c.active, c.created_at, c.updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListClasses(ctx context.Context, activeOnly bool) ([]GymClass, error) {
	query := `
		SELECT ` + classColumns + `, ` + trainerJSON + ` AS trainer
		FROM classes c
		LEFT JOIN users t ON c.trainer_id = t.id
	`
	if activeOnly {
		query += " WHERE c.active"
	}
	query += " ORDER BY c.title ASC"

	var rows []rawClassRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	return NormalizeClasses(ctx, rows, r.TrainersByIDs)
}

func (r *repository) GetClassBySlug(ctx context.Context, slug string) (*GymClass, error) {
	query := `
		SELECT ` + classColumns + `, ` + trainerJSON + ` AS trainer
		FROM classes c
		LEFT JOIN users t ON c.trainer_id = t.id
		WHERE c.slug = $1
	`

	var row rawClassRow
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		return nil, err
	}

	classes, err := NormalizeClasses(ctx, []rawClassRow{row}, r.TrainersByIDs)
	if err != nil {
		return nil, err
	}

	return &classes[0], nil
}

func (r *repository) GetClassByID(ctx context.Context, id int) (*GymClass, error) {
	query := `
		SELECT ` + classColumns + `, ` + trainerJSON + ` AS trainer
		FROM classes c
		LEFT JOIN users t ON c.trainer_id = t.id
		WHERE c.id = $1
	`

	var row rawClassRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	classes, err := NormalizeClasses(ctx, []rawClassRow{row}, r.TrainersByIDs)
	if err != nil {
		return nil, err
	}

	return &classes[0], nil
}

func (r *repository) CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error) {
	query := `
		INSERT INTO classes (title, slug, description, trainer_id, level, duration_min, capacity, cover_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, title, slug, description, trainer_id, level, duration_min,
		          capacity, cover_url, active, created_at, updated_at
	`

	var class GymClass
	err := r.db.GetContext(ctx, &class, query,
		req.Title, req.Slug, req.Description, req.TrainerID,
		req.Level, req.DurationMin, req.Capacity, req.CoverURL)
	if err != nil {
		return nil, err
	}

	return &class, nil
}

func (r *repository) UpdateClass(ctx context.Context, id int, req UpdateClassRequest) (*GymClass, error) {
	query := `
		UPDATE classes
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    trainer_id = COALESCE($4, trainer_id),
		    level = COALESCE($5, level),
		    duration_min = COALESCE($6, duration_min),
		    capacity = COALESCE($7, capacity),
		    cover_url = COALESCE($8, cover_url),
		    active = COALESCE($9, active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, slug, description, trainer_id, level, duration_min,
		          capacity, cover_url, active, created_at, updated_at
	`

	var class GymClass
	err := r.db.GetContext(ctx, &class, query, id,
		req.Title, req.Description, req.TrainerID, req.Level,
		req.DurationMin, req.Capacity, req.CoverURL, req.Active)
	if err != nil {
		return nil, err
	}

	return &class, nil
}

func (r *repository) SetClassActive(ctx context.Context, id int, active bool) error {
	query := `UPDATE classes SET active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *repository) CreateSession(ctx context.Context, classID int, start, end time.Time, capacityOverride *int) (*ClassSession, error) {
	query := `
		INSERT INTO class_sessions (class_id, start_time, end_time, capacity_override)
		VALUES ($1, $2, $3, $4)
		RETURNING id, class_id, start_time, end_time, capacity_override, cancelled, created_at
	`

	var session ClassSession
	err := r.db.GetContext(ctx, &session, query, classID, start, end, capacityOverride)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *repository) CancelSession(ctx context.Context, sessionID int) error {
	query := `
		UPDATE class_sessions
		SET cancelled = TRUE
		WHERE id = $1 AND NOT cancelled
	`

	result, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionAlreadyCancelled
	}

	return nil
}

// ListSessions returns sessions within [from, to) with the parent class
// embedded. json_agg always yields an array of one here; the normalizer
// collapses it.
func (r *repository) ListSessions(ctx context.Context, from, to time.Time, classID *int) ([]ClassSession, error) {
	query := `
		SELECT s.id, s.class_id, s.start_time, s.end_time, s.capacity_override,
		       s.cancelled, s.created_at,
		       json_agg(json_build_object(
		           'id', c.id, 'title', c.title, 'slug', c.slug,
		           'description', c.description, 'trainer_id', c.trainer_id,
		           'level', c.level, 'duration_min', c.duration_min,
		           'capacity', c.capacity, 'cover_url', c.cover_url,
		           'active', c.active, 'created_at', c.created_at,
		           'updated_at', c.updated_at,
		           'trainer', ` + trainerJSON + `
		       )) AS class
		FROM class_sessions s
		JOIN classes c ON s.class_id = c.id
		LEFT JOIN users t ON c.trainer_id = t.id
		WHERE s.start_time >= $1 AND s.start_time < $2
	`
	args := []interface{}{from, to}

	if classID != nil {
		query += " AND s.class_id = $3"
		args = append(args, *classID)
	}

	query += `
		GROUP BY s.id
		ORDER BY s.start_time ASC
	`

	var rows []rawSessionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return NormalizeSessions(ctx, rows, r.TrainersByIDs)
}

func (r *repository) DemandSignals(ctx context.Context) (map[int]DemandSignal, error) {
	query := `
		SELECT c.id AS class_id,
		       COUNT(b.id) FILTER (
		           WHERE b.booked_at >= NOW() - INTERVAL '7 days'
		       ) AS recent,
		       COUNT(b.id) FILTER (
		           WHERE b.booked_at >= NOW() - INTERVAL '14 days'
		             AND b.booked_at < NOW() - INTERVAL '7 days'
		       ) AS previous
		FROM classes c
		LEFT JOIN class_sessions s ON s.class_id = c.id
		LEFT JOIN class_bookings b ON b.session_id = s.id AND b.status IN ('booked', 'attended')
		GROUP BY c.id
	`

	var rows []demandRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	signals := make(map[int]DemandSignal, len(rows))
	for _, row := range rows {
		signals[row.ClassID] = BuildDemandSignal(row.ClassID, row.Recent, row.Previous)
	}

	return signals, nil
}

// TrainerProfile reads the optional trainer_profiles table. A missing row
// or a missing table both degrade to nil rather than failing the read.
func (r *repository) TrainerProfile(ctx context.Context, trainerID int) (*TrainerProfile, error) {
	query := `SELECT user_id, specialty, rating FROM trainer_profiles WHERE user_id = $1`

	var profile TrainerProfile
	err := r.db.GetContext(ctx, &profile, query, trainerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUndefinedTable {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *repository) TrainersByIDs(ctx context.Context, ids []int) (map[int]Trainer, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, last_name FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)

	var trainers []struct {
		ID       int    `db:"id"`
		Name     string `db:"name"`
		LastName string `db:"last_name"`
	}
	if err := r.db.SelectContext(ctx, &trainers, query, args...); err != nil {
		return nil, err
	}

	byID := make(map[int]Trainer, len(trainers))
	for _, t := range trainers {
		byID[t.ID] = Trainer{ID: t.ID, Name: t.Name, LastName: t.LastName}
	}

	return byID, nil
}
