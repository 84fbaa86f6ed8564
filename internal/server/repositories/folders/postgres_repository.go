package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
)

const folderColumns = `id, name, owner_id, parent_folder_id, shared_with, created_at, updated_at`

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(row rowScanner) (*models.Folder, error) {
	f := &models.Folder{}
	err := row.Scan(&f.ID, &f.Name, &f.OwnerID, &f.ParentFolderID, r.types.SQLScanner(&f.SharedWith), &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if f.SharedWith == nil {
		f.SharedWith = []string{}
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	query :=
		`INSERT INTO folders (name, owner_id, parent_folder_id, shared_with)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`

	shared := folder.SharedWith
	if shared == nil {
		shared = []string{}
	}

	err := r.db.QueryRowContext(ctx, query, folder.Name, folder.OwnerID, folder.ParentFolderID, shared).
		Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	folder.SharedWith = shared
	return folder, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f, err := r.scan(r.db.QueryRowContext(ctx, `SELECT `+folderColumns+` FROM folders WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, parentFolderID *string) ([]*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 AND parent_folder_id IS NULL ORDER BY created_at, id`
	args := []any{ownerID}
	if parentFolderID != nil {
		query = `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 AND parent_folder_id = $2 ORDER BY created_at, id`
		args = append(args, *parentFolderID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if dbx.InvalidInput(err) {
			return []*models.Folder{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Folder{}
	for rows.Next() {
		f, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.FolderUpdate) (*models.Folder, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if upd.SharedWith != nil {
		args = append(args, upd.SharedWith)
		sets = append(sets, fmt.Sprintf("shared_with = $%d", len(args)))
	}

	query := `UPDATE folders SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + folderColumns

	f, err := r.scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		if dbx.InvalidInput(err) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.InvalidInput(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
