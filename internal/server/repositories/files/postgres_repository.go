package files

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

const fileColumns = `id, storage_name, original_filename, content_type, size, owner_id, parent_folder_id,
		shared_with, is_public, public_link, public_link_expiry, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
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

func (r *PostgresRepository) scan(row rowScanner) (*models.File, error) {
	f := &models.File{}
	err := row.Scan(&f.ID, &f.StorageName, &f.OriginalFilename, &f.ContentType, &f.Size, &f.OwnerID,
		&f.ParentFolderID, r.types.SQLScanner(&f.SharedWith), &f.IsPublic, &f.PublicLink,
		&f.PublicLinkExpiry, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if f.SharedWith == nil {
		f.SharedWith = []string{}
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (storage_name, original_filename, content_type, size, owner_id, parent_folder_id, shared_with)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	shared := file.SharedWith
	if shared == nil {
		shared = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		file.StorageName, file.OriginalFilename, file.ContentType, file.Size, file.OwnerID, file.ParentFolderID, shared).
		Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	file.SharedWith = shared
	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, parentFolderID *string) ([]*models.File, error) {
	if parentFolderID == nil {
		return r.list(ctx, `SELECT `+fileColumns+` FROM files
			WHERE owner_id = $1 AND parent_folder_id IS NULL ORDER BY created_at, id`, ownerID)
	}
	return r.list(ctx, `SELECT `+fileColumns+` FROM files
			WHERE owner_id = $1 AND parent_folder_id = $2 ORDER BY created_at, id`, ownerID, *parentFolderID)
}

func (r *PostgresRepository) ListSharedWith(ctx context.Context, userID string) ([]*models.File, error) {
	return r.list(ctx, `SELECT `+fileColumns+` FROM files
			WHERE $1 = ANY(shared_with) ORDER BY created_at, id`, userID)
}

func (r *PostgresRepository) ListPublicByLink(ctx context.Context, link string) ([]*models.File, error) {
	return r.list(ctx, `SELECT `+fileColumns+` FROM files
			WHERE public_link = $1 AND is_public ORDER BY created_at, id`, link)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if dbx.InvalidInput(err) {
			return []*models.File{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.File{}
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

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.FileUpdate) (*models.File, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	if upd.SharedWith != nil {
		args = append(args, upd.SharedWith)
		sets = append(sets, fmt.Sprintf("shared_with = $%d", len(args)))
	}
	if upd.PublicLink != nil {
		args = append(args, upd.PublicLink.Link)
		sets = append(sets, "is_public = true", fmt.Sprintf("public_link = $%d", len(args)))
		args = append(args, upd.PublicLink.ExpiresAt)
		sets = append(sets, fmt.Sprintf("public_link_expiry = $%d", len(args)))
	}

	query := `UPDATE files SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + fileColumns

	f, err := r.scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
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
