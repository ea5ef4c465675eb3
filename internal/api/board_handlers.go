package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

func (s *Server) registerBoardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBoard",
		Method:      http.MethodGet,
		Path:        "/api/board",
		Summary:     "Get board",
		Description: "Returns the stored board document, creating the default board on first access",
		Tags:        []string{"Board"},
	}, s.handleGetBoard)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceBoard",
		Method:      http.MethodPatch,
		Path:        "/api/board",
		Summary:     "Replace board",
		Description: "Validates and stores a whole board document. Last write wins.",
		Tags:        []string{"Board"},
	}, s.handleReplaceBoard)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportBoard",
		Method:      http.MethodGet,
		Path:        "/api/board/export",
		Summary:     "Export board",
		Description: "Downloads the board annotated as a backup file",
		Tags:        []string{"Board"},
	}, s.handleExportBoard)
}

// BoardOutput carries a serialized board document.
type BoardOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// ReplaceBoardInput is the raw board document sent by the client. The
// document is checked by the board validator, not by a body schema.
type ReplaceBoardInput struct {
	RawBody []byte
}

// ExportOutput is a backup file download.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *Server) handleGetBoard(ctx context.Context, _ *struct{}) (*BoardOutput, error) {
	b, err := s.boards.GetOrInit(ctx, s.seed)
	if err != nil {
		s.logger.Error("failed to load board", "error", err)
		return nil, toAPIError(err, "failed to load board")
	}
	return s.boardOutput(b)
}

func (s *Server) handleReplaceBoard(ctx context.Context, input *ReplaceBoardInput) (*BoardOutput, error) {
	b, err := s.validator.Board(input.RawBody)
	if err != nil {
		return nil, toAPIError(err, "invalid board document")
	}
	b = board.New(s.opts.Clock).NormalizeColumnOrder(b)

	if err := s.boards.Upsert(ctx, b); err != nil {
		s.logger.Error("failed to save board", "error", err)
		return nil, toAPIError(err, "failed to save board")
	}

	s.logger.Debug("board saved",
		"columns", len(b.Columns),
		"followers", len(b.Followers),
		"tags", len(b.Tags),
	)
	return s.boardOutput(b)
}

func (s *Server) handleExportBoard(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	b, err := s.boards.GetOrInit(ctx, s.seed)
	if err != nil {
		s.logger.Error("failed to load board for export", "error", err)
		return nil, toAPIError(err, "failed to load board")
	}

	now := s.opts.Clock()
	data, err := domain.EncodeBackup(b, now)
	if err != nil {
		return nil, toAPIError(err, "failed to encode board")
	}
	return &ExportOutput{
		ContentType:        "application/json",
		ContentDisposition: `attachment; filename="` + domain.BackupFileName(now) + `"`,
		Body:               data,
	}, nil
}

func (s *Server) boardOutput(b *domain.Board) (*BoardOutput, error) {
	data, err := domain.Encode(b)
	if err != nil {
		s.logger.Error("failed to encode board", "error", err)
		return nil, toAPIError(err, "failed to encode board")
	}
	return &BoardOutput{ContentType: "application/json", Body: data}, nil
}
