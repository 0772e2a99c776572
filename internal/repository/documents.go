package repository

import (
	"context"
	"database/sql"
	"fmt"

	"revengine/internal/domain"
)

// DocumentRepo persists Document records.
type DocumentRepo interface {
	Create(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, page domain.PageRequest) ([]*domain.Document, string, error)
}

type documentRepo struct {
	db *sql.DB
}

var _ DocumentRepo = (*documentRepo)(nil)

// NewDocumentRepo constructs a DocumentRepo backed by db.
func NewDocumentRepo(db *sql.DB) DocumentRepo {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, name, source_path, doc_type, schema_version, normalization_version,
			 hash_contract_version, ingested_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.SourcePath, string(doc.DocType), doc.SchemaVersion,
		doc.NormalizationVersion, doc.HashContractVersion, doc.IngestedAt, doc.Metadata,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", mapDBError(err, "document"))
	}
	return nil
}

func (r *documentRepo) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, source_path, doc_type, schema_version, normalization_version,
		       hash_contract_version, ingested_at, metadata
		FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("document %s not found", id))
	}
	return doc, nil
}

func (r *documentRepo) List(ctx context.Context, page domain.PageRequest) ([]*domain.Document, string, error) {
	limit := page.Limit()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, source_path, doc_type, schema_version, normalization_version,
		       hash_contract_version, ingested_at, metadata
		FROM documents ORDER BY ingested_at, id LIMIT ? OFFSET ?`,
		limit, page.Offset(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, "", fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	return docs, page.NextPageToken(len(docs)), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType string
	if err := row.Scan(
		&doc.ID, &doc.Name, &doc.SourcePath, &docType, &doc.SchemaVersion,
		&doc.NormalizationVersion, &doc.HashContractVersion, &doc.IngestedAt, &doc.Metadata,
	); err != nil {
		return nil, err
	}
	dt, err := domain.ParseDocumentType(docType)
	if err != nil {
		return nil, err
	}
	doc.DocType = dt
	return &doc, nil
}
