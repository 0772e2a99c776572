package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"revengine/internal/domain"
)

// documentService defines the document operations used by the documents
// handler.
type documentService interface {
	Ingest(ctx context.Context, name, sourcePath string, docType domain.DocumentType, schemaVersion, normalizationVersion, hashContractVersion int, metadata []byte, roots []*domain.Block) (*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, page domain.PageRequest) ([]*domain.Document, string, error)
	Blocks(ctx context.Context, documentID string) ([]*domain.Block, error)
}

// DocumentsHandler serves /documents.
type DocumentsHandler struct {
	documents documentService
}

// NewDocumentsHandler constructs a DocumentsHandler.
func NewDocumentsHandler(documents documentService) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// Routes mounts the handler's routes onto r.
func (h *DocumentsHandler) Routes(r chi.Router) {
	r.Post("/documents", h.create)
	r.Get("/documents", h.list)
	r.Get("/documents/{id}", h.get)
	r.Get("/documents/{id}/blocks", h.blocks)
}

type blockInput struct {
	BlockType       string                `json:"block_type"`
	StructuralPath  string                `json:"structural_path"`
	CanonicalText   string                `json:"canonical_text"`
	DisplayText     string                `json:"display_text"`
	ClauseHash      string                `json:"clause_hash"`
	AnchorSignature string                `json:"anchor_signature"`
	PositionIndex   int                   `json:"position_index"`
	FormattingMeta  domain.FormattingMeta `json:"formatting_meta"`
	Children        []blockInput          `json:"children"`
}

func (b blockInput) toBlock(documentID string, parentID *string) (*domain.Block, error) {
	bt, err := domain.ParseBlockType(b.BlockType)
	if err != nil {
		return nil, err
	}
	block := &domain.Block{
		ID:              domain.NewID(),
		DocumentID:      documentID,
		ParentID:        parentID,
		BlockType:       bt,
		StructuralPath:  b.StructuralPath,
		AnchorSignature: b.AnchorSignature,
		ClauseHash:      b.ClauseHash,
		CanonicalText:   b.CanonicalText,
		DisplayText:     b.DisplayText,
		FormattingMeta:  b.FormattingMeta,
		PositionIndex:   b.PositionIndex,
	}
	for i, c := range b.Children {
		child, err := c.toBlock(documentID, &block.ID)
		if err != nil {
			return nil, err
		}
		child.PositionIndex = i
		block.Children = append(block.Children, child)
	}
	return block, nil
}

type ingestRequest struct {
	Name                 string          `json:"name"`
	SourcePath           string          `json:"source_path"`
	DocType              string          `json:"doc_type"`
	SchemaVersion        int             `json:"schema_version"`
	NormalizationVersion int             `json:"normalization_version"`
	HashContractVersion  int             `json:"hash_contract_version"`
	Metadata             json.RawMessage `json:"metadata"`
	Blocks               []blockInput    `json:"blocks"`
}

func (h *DocumentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	docType, err := domain.ParseDocumentType(req.DocType)
	if err != nil {
		writeError(w, err)
		return
	}

	// documentID is unknown until the service assigns one, so blocks are
	// first built against a placeholder and the service rewrites it — see
	// DocumentService.Ingest, which persists Document before the tree.
	roots := make([]*domain.Block, 0, len(req.Blocks))
	for i, b := range req.Blocks {
		block, err := b.toBlock("", nil)
		if err != nil {
			writeError(w, err)
			return
		}
		block.PositionIndex = i
		roots = append(roots, block)
	}

	doc, err := h.documents.Ingest(r.Context(), req.Name, req.SourcePath, docType,
		req.SchemaVersion, req.NormalizationVersion, req.HashContractVersion,
		[]byte(req.Metadata), roots)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentsHandler) list(w http.ResponseWriter, r *http.Request) {
	page := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.MaxResults = n
		}
	}
	docs, next, err := h.documents.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data          []*domain.Document `json:"data"`
		NextPageToken string             `json:"next_page_token,omitempty"`
	}{Data: docs, NextPageToken: next})
}

func (h *DocumentsHandler) blocks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	blocks, err := h.documents.Blocks(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*domain.Block `json:"data"`
	}{Data: blocks})
}
