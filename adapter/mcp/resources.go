package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// RegisterResources registers MCP resources that expose interview listings.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}

	ts := &toolset{app: deps.App}

	srv.Resource("panelist://interviews").
		Name("Interviews").
		Description("All interviews of the current owner, newest first").
		MimeType("application/json").
		Handler(ts.listingResource(""))

	srv.Resource("panelist://interviews/drafts").
		Name("Draft Interviews").
		Description("Interviews still being authored").
		MimeType("application/json").
		Handler(ts.listingResource(domain.StatusDraft))

	srv.Resource("panelist://interviews/live").
		Name("Live Interviews").
		Description("Interviews accepting candidates").
		MimeType("application/json").
		Handler(ts.listingResource(domain.StatusLive))

	srv.Resource("panelist://interviews/closed").
		Name("Closed Interviews").
		Description("Interviews that no longer accept candidates").
		MimeType("application/json").
		Handler(ts.listingResource(domain.StatusClosed))

	return nil
}

func (ts *toolset) listingResource(status domain.Status) func(context.Context, string, map[string]string) (*mcp.ResourceContent, error) {
	return func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
		if ts.app.ListInterviewsHandler == nil {
			return nil, ErrStoreUnavailable
		}

		summaries, err := ts.app.ListInterviewsHandler.Handle(ctx, queries.ListInterviewsQuery{
			OwnerEmail: ts.app.OwnerEmail,
			Status:     string(status),
		})
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return nil, err
		}

		return &mcp.ResourceContent{
			URI:      uri,
			MimeType: "application/json",
			Text:     string(data),
		}, nil
	}
}
