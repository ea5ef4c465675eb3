package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "lookupImport",
		Method:      http.MethodGet,
		Path:        "/api/instagram-import",
		Summary:     "Look up follower export",
		Description: "Reads the follower export folders and returns the board with new usernames merged in. Nothing is saved.",
		Tags:        []string{"Import"},
	}, s.handleLookupImport)
}

// LookupImportInput selects the board the usernames are merged into.
type LookupImportInput struct {
	Fresh bool `query:"fresh" doc:"Merge into a fresh default board instead of the stored one"`
}

// LookupImportResponse is a successful lookup.
type LookupImportResponse struct {
	Success    bool          `json:"success"`
	Count      int           `json:"count" doc:"Distinct usernames found in the export"`
	Added      int           `json:"added" doc:"Followers added to the board"`
	Folder     string        `json:"folder" doc:"Export folder the usernames came from"`
	BoardState *domain.Board `json:"boardState"`
}

// LookupImportOutput wraps the lookup response for Huma.
type LookupImportOutput struct {
	Body LookupImportResponse
}

// ImportNotFoundError is the 404 body when no export holds usernames.
type ImportNotFoundError struct {
	Success bool   `json:"success"`
	Message string `json:"error"`
	Path    string `json:"path"`
}

// Error implements the error interface.
func (e *ImportNotFoundError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *ImportNotFoundError) GetStatus() int {
	return http.StatusNotFound
}

// ContentType returns the content type for the error response.
func (e *ImportNotFoundError) ContentType(_ string) string {
	return "application/json"
}

func (s *Server) handleLookupImport(ctx context.Context, input *LookupImportInput) (*LookupImportOutput, error) {
	if s.imports == nil {
		return nil, &ImportNotFoundError{Message: "import is not configured"}
	}

	result, err := s.imports.Lookup(ctx)
	if err != nil {
		var nf *importer.NothingFoundError
		if errors.As(err, &nf) {
			return nil, &ImportNotFoundError{
				Message: "No follower export data found. Place the export folder next to the server.",
				Path:    nf.Path,
			}
		}
		s.logger.Error("import lookup failed", "error", err)
		return nil, toAPIError(err, "failed to read follower export")
	}

	var base *domain.Board
	if input.Fresh {
		base = s.seed()
	} else {
		base, err = s.boards.GetOrInit(ctx, s.seed)
		if err != nil {
			s.logger.Error("failed to load board for import", "error", err)
			return nil, toAPIError(err, "failed to load board")
		}
	}

	merged, added := importer.Merge(base, result.Usernames, s.opts.Clock())
	s.logger.Info("import looked up",
		"folder", result.Folder,
		"usernames", len(result.Usernames),
		"added", added,
		"fresh", input.Fresh,
	)

	return &LookupImportOutput{Body: LookupImportResponse{
		Success:    true,
		Count:      len(result.Usernames),
		Added:      added,
		Folder:     result.Folder,
		BoardState: merged,
	}}, nil
}
