package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"linkmint/internal/models"
)

// BioRepository reads the slice of bio state the sponsored subsystem needs:
// ownership, lifetime views and the content blocks column.
type BioRepository struct {
	DB *sql.DB
}

func scanBio(scanner interface{ Scan(dest ...any) error }) (models.Bio, error) {
	var bio models.Bio
	var blocks sql.NullString
	if err := scanner.Scan(&bio.ID, &bio.UserID, &bio.Views, &blocks); err != nil {
		return models.Bio{}, err
	}
	if blocks.Valid && blocks.String != "" {
		if err := json.Unmarshal([]byte(blocks.String), &bio.Blocks); err != nil {
			return models.Bio{}, err
		}
	}
	return bio, nil
}

func (r *BioRepository) GetBio(ctx context.Context, bioID string) (models.Bio, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, views, blocks FROM bios WHERE id = ?`, bioID)
	bio, err := scanBio(row)
	if err == sql.ErrNoRows {
		return models.Bio{}, models.ErrBioNotFound
	}
	return bio, err
}

func (r *BioRepository) GetBioForUser(ctx context.Context, bioID, userID string) (models.Bio, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, views, blocks FROM bios WHERE id = ? AND user_id = ?`,
		bioID, userID)
	bio, err := scanBio(row)
	if err == sql.ErrNoRows {
		return models.Bio{}, models.ErrBioNotFound
	}
	return bio, err
}

func (r *BioRepository) SaveBlocks(ctx context.Context, bioID string, blocks []models.BioBlock) error {
	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE bios SET blocks = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(data), bioID)
	return err
}
