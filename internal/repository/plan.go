package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/ai-travel-planner/internal/models"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository создает репозиторий истории планов.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create сохраняет сгенерированный план вместе с исходными параметрами поездки.
func (r *PlanRepository) Create(ctx context.Context, sessionID uuid.UUID, input models.UserInput, plan models.TravelPlan) (models.StoredPlan, error) {
	stored := models.StoredPlan{
		ID:        uuid.New(),
		SessionID: sessionID,
		Input:     input,
		Plan:      plan,
	}

	inputPayload, err := json.Marshal(input)
	if err != nil {
		return stored, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	planPayload, err := json.Marshal(plan)
	if err != nil {
		return stored, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO plans (id, session_id, input, plan)
		 VALUES ($1, $2, $3::jsonb, $4::jsonb)
		 RETURNING created_at`,
		stored.ID, sessionID, string(inputPayload), string(planPayload),
	).Scan(&stored.CreatedAt)
	if err != nil {
		return stored, err
	}

	return stored, nil
}

// GetByID возвращает план сессии по идентификатору.
func (r *PlanRepository) GetByID(ctx context.Context, sessionID, planID uuid.UUID) (models.StoredPlan, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, session_id, input, plan, created_at
		 FROM plans
		 WHERE id = $1 AND session_id = $2`,
		planID, sessionID,
	)

	stored, err := scanStoredPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return stored, ErrNotFound
	}
	return stored, err
}

// ListBySession возвращает последние планы сессии, новые первыми.
func (r *PlanRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.StoredPlan, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, input, plan, created_at
		 FROM plans
		 WHERE session_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.StoredPlan, 0)
	for rows.Next() {
		stored, err := scanStoredPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, stored)
	}

	return plans, rows.Err()
}

func scanStoredPlan(row pgx.Row) (models.StoredPlan, error) {
	var stored models.StoredPlan
	var inputPayload, planPayload []byte

	if err := row.Scan(&stored.ID, &stored.SessionID, &inputPayload, &planPayload, &stored.CreatedAt); err != nil {
		return stored, err
	}

	if err := json.Unmarshal(inputPayload, &stored.Input); err != nil {
		return stored, fmt.Errorf("decode plan input: %w", err)
	}

	plan, ok := models.DecodePlan(planPayload)
	if !ok {
		return stored, fmt.Errorf("decode plan %s: invalid payload", stored.ID)
	}
	stored.Plan = plan

	return stored, nil
}
