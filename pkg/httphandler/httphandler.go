package httphandler

import (
	"errors"

	// Packages
	llm "github.com/mutablelogic/go-llmservice"
	query "github.com/mutablelogic/go-llmservice/pkg/query"
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	jsonschema "github.com/mutablelogic/go-server/pkg/jsonschema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Router registers path items, and is implemented by *httprouter.Router
type Router interface {
	RegisterPath(path string, params *jsonschema.Schema, pathitem httprequest.PathItem) error
}

// RegisterHandlers registers the query handler and, when the toolkit is not
// nil, the tool discovery handlers. Paths are relative to the router prefix.
func RegisterHandlers(service *query.Service, toolkit *tool.Toolkit, router Router) error {
	var result error
	if router == nil {
		return llm.ErrBadParameter.With("missing router")
	}

	// Convenience function to register a handler and accumulate any errors
	register := func(path string, item httprequest.PathItem) {
		result = errors.Join(result, router.RegisterPath(path, nil, item))
	}

	// Register handlers
	register(QueryHandler(service))
	if toolkit != nil {
		register(ToolListHandler(toolkit))
		register(ToolGetHandler(toolkit))
	}

	// Return any errors
	return result
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// httpErr converts an llm.Err to an httpresponse.Err, preserving the
// original error message. Unknown error codes map to 500.
func httpErr(err error) error {
	var llmErr llm.Err
	if !errors.As(err, &llmErr) {
		return httpresponse.ErrInternalError.With(err)
	}
	switch llmErr {
	case llm.ErrNotFound:
		return httpresponse.ErrNotFound.With(err)
	case llm.ErrBadParameter:
		return httpresponse.ErrBadRequest.With(err)
	case llm.ErrConflict:
		return httpresponse.ErrConflict.With(err)
	case llm.ErrNotImplemented:
		return httpresponse.ErrNotImplemented.With(err)
	default:
		return httpresponse.ErrInternalError.With(err)
	}
}
