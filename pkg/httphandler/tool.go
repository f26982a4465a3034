package httphandler

import (
	"net/http"

	// Packages
	tool "github.com/mutablelogic/go-llmservice/pkg/tool"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: tools
func ToolListHandler(toolkit *tool.Toolkit) (string, httprequest.PathItem) {
	return "tools", httprequest.NewPathItem("Tools", "Tools available to the query agent", "tool").
		Get(func(w http.ResponseWriter, r *http.Request) {
			resp, err := toolkit.Describe()
			if err != nil {
				_ = httpresponse.Error(w, httpErr(err))
				return
			}
			_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), resp)
		}, "List tools")
}

// Path: tools/{name}
func ToolGetHandler(toolkit *tool.Toolkit) (string, httprequest.PathItem) {
	return "tools/{name}", httprequest.NewPathItem("Tool", "A tool available to the query agent", "tool").
		Get(func(w http.ResponseWriter, r *http.Request) {
			t, err := toolkit.Resolve(r.PathValue("name"))
			if err != nil {
				_ = httpresponse.Error(w, httpErr(err))
				return
			}
			resp, err := tool.Describe(t)
			if err != nil {
				_ = httpresponse.Error(w, httpErr(err))
				return
			}
			_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), resp)
		}, "Get a tool by name")
}
