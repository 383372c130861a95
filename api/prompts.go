package api

import (
	"context"
	"fmt"
	"strings"

	mcp "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	prompt := mcp.NewPrompt("search_assistant",
		mcp.WithPromptDescription("Guide a thorough web search on a topic using the tools on this server."),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("The topic to research."),
			mcp.RequiredArgument(),
		),
	)
	s.mcp.AddPrompt(prompt, s.handleSearchAssistant)
}

func (s *Server) handleSearchAssistant(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := strings.TrimSpace(req.Params.Arguments["topic"])
	if topic == "" {
		return nil, fmt.Errorf("the topic argument is required")
	}

	instructions := fmt.Sprintf(
		"Research the topic %q using the search tools available here.\n\n"+
			"1. Call web_search with the topic to get an overview of what is out there.\n"+
			"2. Call suggest_related_searches to find angles you may be missing, and search the promising ones.\n"+
			"3. Call get_page_content on the most relevant results to read them.\n"+
			"4. Call get_details on primary sources to check authorship, publication date and whether the source looks official.\n\n"+
			"Then summarize what you found, citing the URLs you used.", topic)

	return mcp.NewGetPromptResult(
		fmt.Sprintf("Search assistant for %q", topic),
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(instructions)),
		},
	), nil
}
