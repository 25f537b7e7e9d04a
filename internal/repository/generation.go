package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/ai-travel-planner/internal/models"
)

type GenerationRepository struct {
	db *pgxpool.Pool
}

type GenerationLog struct {
	SessionID       uuid.UUID
	Provider        string
	Model           string
	Prompt          string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     string
	Success         bool
	ErrorMessage    *string
}

// NewGenerationRepository создает репозиторий журнала генераций.
func NewGenerationRepository(db *pgxpool.Pool) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// LogRequest сохраняет лог запроса к AI.
func (r *GenerationRepository) LogRequest(ctx context.Context, log GenerationLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO generation_requests
		 (id, session_id, provider, model, prompt, request_payload, response_payload, raw_response, success, error_message)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::jsonb, NULLIF($7, '')::jsonb, $8, $9, $10)`,
		uuid.New(),
		log.SessionID,
		log.Provider,
		log.Model,
		log.Prompt,
		string(log.RequestPayload),
		string(log.ResponsePayload),
		log.RawResponse,
		log.Success,
		log.ErrorMessage,
	)
	return err
}

// ListBySession возвращает последние попытки генерации сессии.
func (r *GenerationRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.GenerationRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, provider, model, success, error_message, created_at
		 FROM generation_requests
		 WHERE session_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.GenerationRequest, 0)
	for rows.Next() {
		var request models.GenerationRequest
		if err := rows.Scan(&request.ID, &request.SessionID, &request.Provider, &request.Model, &request.Success, &request.ErrorMessage, &request.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}
