package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/pkg/pagination"
	"github.com/JaimeStill/recon/pkg/query"
	"github.com/JaimeStill/recon/pkg/repository"
)

var dbErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate, Invalid: ErrInvalidStage}

const returning = "RETURNING id, name, stage, instructions, description, active"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a PostgreSQL backed prompt system.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Instructions returns the active override for stage, or the built-in
// instructions when no override is active.
func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	fallback, err := Default(stage)
	if err != nil {
		return "", err
	}

	active := true
	q, args := query.New(projection).
		Equals("Stage", &stage).
		Equals("Active", &active).
		First()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s instructions: %w", stage, err)
	}
	return p.Instructions, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		New(projection, defaultSort).
		Search(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort...)
	}

	countSQL, countArgs := qb.Count()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.Page(page.Page, page.PageSize)
	prompts, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(prompts, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.New(projection).Equals("ID", id).First()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := validate(cmd.Name, cmd.Stage, cmd.Instructions); err != nil {
		return nil, err
	}

	q := `INSERT INTO prompts(name, stage, instructions, description)
		VALUES ($1, $2, $3, $4) ` + returning

	p, err := r.write(ctx, q, cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return p, nil
}

// Update edits an override. Moving an active override to another stage
// deactivates it so the target stage keeps at most one active override.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := validate(cmd.Name, cmd.Stage, cmd.Instructions); err != nil {
		return nil, err
	}

	q := `UPDATE prompts
		SET name = $1, stage = $2, instructions = $3, description = $4,
			active = active AND stage = $2
		WHERE id = $5 ` + returning

	p, err := r.write(ctx, q, cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description, id)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt updated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM prompts WHERE id = $1", id)
	})
	if err != nil {
		return dbErrors.Map(err)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

// Activate makes the prompt the single active override for its stage.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		findQ, findArgs := query.New(projection).Equals("ID", id).First()
		target, err := repository.QueryOne(ctx, tx, findQ, findArgs, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		if _, err := tx.ExecContext(
			ctx,
			"UPDATE prompts SET active = false WHERE stage = $1 AND active AND id <> $2",
			target.Stage, id,
		); err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		q := "UPDATE prompts SET active = true WHERE id = $1 " + returning
		return repository.QueryOne(ctx, tx, q, []any{id}, scanPrompt)
	})
	if err != nil {
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("prompt activated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := r.write(ctx, "UPDATE prompts SET active = false WHERE id = $1 "+returning, id)
	if err != nil {
		return nil, err
	}

	r.logger.Info("prompt deactivated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return p, nil
}

func (r *repo) write(ctx context.Context, q string, args ...any) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &p, nil
}
