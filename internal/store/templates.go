package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/swipswaps/marketplace-bulk-editor/internal/template"
)

// SavedTemplate is a named, persisted capture of an upload template.
type SavedTemplate struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Template  template.Template `json:"template"`
	CreatedAt time.Time         `json:"created_at"`
}

// TemplateRepo persists captured templates per user.
type TemplateRepo struct {
	db DBTX
}

// Save stores a template under a name.
func (r *TemplateRepo) Save(ctx context.Context, userID, name string, t template.Template) (SavedTemplate, error) {
	headerRows, err := json.Marshal(t.HeaderRows)
	if err != nil {
		return SavedTemplate{}, err
	}
	columnHeaders, err := json.Marshal(t.ColumnHeaders)
	if err != nil {
		return SavedTemplate{}, err
	}
	sampleRows, err := json.Marshal(t.SampleRows)
	if err != nil {
		return SavedTemplate{}, err
	}

	st := SavedTemplate{ID: uuid.NewString(), Name: name, Template: t}
	err = r.db.QueryRow(ctx,
		`INSERT INTO saved_templates
		     (id, user_id, name, sheet_name, header_row_index,
		      header_rows, column_headers, sample_rows)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		st.ID, userID, name, t.SheetName, t.HeaderRowIndex,
		headerRows, columnHeaders, sampleRows,
	).Scan(&st.CreatedAt)
	if err != nil {
		return SavedTemplate{}, err
	}
	return st, nil
}

// List returns the user's saved templates, newest first.
func (r *TemplateRepo) List(ctx context.Context, userID string) ([]SavedTemplate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, sheet_name, header_row_index,
		        header_rows, column_headers, sample_rows, created_at
		 FROM saved_templates
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedTemplate
	for rows.Next() {
		st, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Get fetches one saved template owned by the user.
func (r *TemplateRepo) Get(ctx context.Context, userID, id string) (SavedTemplate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, sheet_name, header_row_index,
		        header_rows, column_headers, sample_rows, created_at
		 FROM saved_templates
		 WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	st, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SavedTemplate{}, ErrNotFound
	}
	if err != nil {
		return SavedTemplate{}, err
	}
	return st, nil
}

// Delete removes one saved template owned by the user.
func (r *TemplateRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM saved_templates WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (SavedTemplate, error) {
	var st SavedTemplate
	var headerRows, columnHeaders, sampleRows []byte
	err := row.Scan(&st.ID, &st.Name, &st.Template.SheetName,
		&st.Template.HeaderRowIndex, &headerRows, &columnHeaders,
		&sampleRows, &st.CreatedAt)
	if err != nil {
		return SavedTemplate{}, err
	}
	if err := json.Unmarshal(headerRows, &st.Template.HeaderRows); err != nil {
		return SavedTemplate{}, err
	}
	if err := json.Unmarshal(columnHeaders, &st.Template.ColumnHeaders); err != nil {
		return SavedTemplate{}, err
	}
	if err := json.Unmarshal(sampleRows, &st.Template.SampleRows); err != nil {
		return SavedTemplate{}, err
	}
	return st, nil
}
