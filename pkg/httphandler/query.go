package httphandler

import (
	"errors"
	"net/http"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ErrorResponse is the body of a failed query
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	errNoQuestion = "No question provided"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: query
func QueryHandler(service *query.Service) (string, httprequest.PathItem) {
	return "query", httprequest.NewPathItem("Query", "Answer a natural language question about the database", "query").
		Post(func(w http.ResponseWriter, r *http.Request) {
			// A body which cannot be read is treated as having no question
			var req query.Request
			if err := httprequest.Read(r, &req); err != nil {
				_ = httpresponse.JSON(w, http.StatusBadRequest, httprequest.Indent(r), ErrorResponse{Error: errNoQuestion})
				return
			}

			// Perform operation and return response
			resp, err := service.Process(r.Context(), req)
			if errors.Is(err, llm.ErrBadParameter) {
				_ = httpresponse.JSON(w, http.StatusBadRequest, httprequest.Indent(r), ErrorResponse{Error: errNoQuestion})
				return
			} else if err != nil {
				_ = httpresponse.JSON(w, http.StatusInternalServerError, httprequest.Indent(r), ErrorResponse{
					Error:   code(err),
					Message: err.Error(),
				})
				return
			}
			_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), resp)
		}, "Ask a question")
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// code returns the machine-readable code for an error
func code(err error) string {
	var llmErr llm.Err
	if errors.As(err, &llmErr) {
		return llmErr.Code()
	}
	return llm.ErrInternalServerError.Code()
}
