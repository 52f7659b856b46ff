package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xela07ax/traveldesk/internal/domain"
)

func (r *Repo) CreateDocument(ctx context.Context, d *domain.Document) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, travel_request_id, file_name, file_url,
		                       document_type, description, uploaded_date, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)`,
		d.ID, d.TravelRequestID, d.FileName, d.FileURL,
		d.DocumentType, d.Description, d.UploadedDate,
	)
	if err != nil {
		return fmt.Errorf("postgres: create document: %w", err)
	}
	return nil
}

// ListDocuments — вложения заявки, новые сверху.
func (r *Repo) ListDocuments(ctx context.Context, travelRequestID string) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, travel_request_id, file_name, file_url, document_type,
		       description, uploaded_date
		FROM documents
		WHERE travel_request_id = $1 AND is_deleted = false
		ORDER BY uploaded_date DESC`, travelRequestID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query documents: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.Document, 0)
	for rows.Next() {
		var (
			d    domain.Document
			desc sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.TravelRequestID, &d.FileName, &d.FileURL,
			&d.DocumentType, &desc, &d.UploadedDate); err != nil {
			return nil, fmt.Errorf("postgres: scan document: %w", err)
		}
		if desc.Valid {
			d.Description = &desc.String
		}
		results = append(results, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// SoftDeleteDocument помечает вложение удаленным, файл остается в хранилище.
func (r *Repo) SoftDeleteDocument(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET is_deleted = true WHERE id = $1 AND is_deleted = false`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("Document not found")
	}
	return nil
}
