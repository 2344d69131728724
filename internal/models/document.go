package models

// File types accepted by the ingestion pipeline
const (
	FileTypeText  = "text"
	FileTypePDF   = "pdf"
	FileTypeAudio = "audio"
	FileTypeImage = "image"
	FileTypeWeb   = "web"
)

// Payload field names persisted in the vector backend. These are the de-facto
// wire format shared with every payload consumer (listing, chat context builder,
// summarization); renaming any of them is a breaking change.
const (
	FieldDocumentID     = "document_id"
	FieldFilename       = "filename"
	FieldChunkIndex     = "chunk_index"
	FieldContent        = "content"
	FieldUploadDate     = "uploadDate"
	FieldEmbeddingModel = "embedding_model"
	FieldFileType       = "fileType"

	// Full-document record payload fields
	FieldFullDocumentID = "documentId"
	FieldFileSize       = "fileSize"
	FieldChunkCount     = "chunkCount"
	FieldFullContent    = "fullContent"
	FieldIsFullDocument = "isFullDocument"
)

// ChunkMeta carries the document-level metadata shared by every chunk of one
// ingested document. UploadDate is stamped once per document so that all of its
// chunks sort and filter identically.
type ChunkMeta struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	UploadDate     string `json:"upload_date"` // RFC3339 UTC
	FileType       string `json:"file_type"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// IngestResult is the structured outcome of an ingestion step. Orchestration
// boundaries return this instead of raising so UI-facing callers never need to
// unwrap error chains (partial failures are reported, not thrown).
type IngestResult struct {
	Success        bool   `json:"success"`
	Count          int    `json:"count"`
	Model          string `json:"model,omitempty"`
	Dimensions     int    `json:"dimensions,omitempty"`
	Message        string `json:"message,omitempty"`
	NeedsReconcile bool   `json:"needs_reconcile,omitempty"`
}

// SearchResult is one retrieved chunk, shaped for the answer-building layer.
// Score, Filename and FileType are populated only when the caller asked for
// metadata.
type SearchResult struct {
	Content  string  `json:"content"`
	Score    float64 `json:"score,omitempty"`
	Filename string  `json:"filename,omitempty"`
	FileType string  `json:"file_type,omitempty"`
}

// FullDocument is the dedicated whole-document record kept alongside the
// chunks, in its own collection. The string DocumentID is authoritative; the
// numeric storage key derived from it is an artifact of the backend.
type FullDocument struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	FileType       string `json:"file_type"`
	FileSize       int64  `json:"file_size"`
	UploadDate     string `json:"upload_date"`
	ChunkCount     int    `json:"chunk_count"`
	FullContent    string `json:"full_content,omitempty"`
	EmbeddingModel string `json:"embedding_model"`
}

// DocumentSummary is a per-document view derived by grouping chunk points.
// UploadDate is the earliest date seen among the group's chunks.
type DocumentSummary struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename"`
	UploadDate     string `json:"upload_date"`
	EmbeddingModel string `json:"embedding_model"`
	ChunkCount     int    `json:"chunks_count"`
}

// ChatAnswer is the result of a retrieval-augmented chat turn.
type ChatAnswer struct {
	Answer     string         `json:"answer"`
	Model      string         `json:"model"`
	Sources    []SearchResult `json:"sources,omitempty"`
	ChunksUsed int            `json:"chunks_used"`
}
