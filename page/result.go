package page

// Relation values for LinkedContent.
const (
	RelationLinked = "linked"
	RelationNested = "nested"
)

// LinkedContent is a reduced summary of a page discovered while spidering.
type LinkedContent struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	ContentSnippet string `json:"content_snippet,omitempty"`
	Relation       string `json:"relation"`
}

// DetailedResult carries everything the detail fetcher could extract from a
// single page. Fields the page did not provide stay absent rather than
// being defaulted to placeholder text.
type DetailedResult struct {
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Description    string            `json:"description"`
	PublishedDate  string            `json:"published_date,omitempty"`
	ContentSnippet string            `json:"content_snippet,omitempty"`
	Domain         string            `json:"domain"`
	IsOfficial     *bool             `json:"is_official,omitempty"`
	Author         string            `json:"author,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	MainImage      string            `json:"main_image,omitempty"`
	SocialLinks    map[string]string `json:"social_links,omitempty"`
	RelatedLinks   []string          `json:"related_links,omitempty"`
	LinkedContent  []LinkedContent   `json:"linked_content,omitempty"`
	Headings       []string          `json:"headings,omitempty"`
}

// PageContent is the flat extraction returned by get_page_content.
type PageContent struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Content        string `json:"content"`
	ContentPreview string `json:"content_preview"`
	Domain         string `json:"domain"`
	Error          string `json:"error,omitempty"`
}

// DetailOptions bounds the optional link-following pass of a detail fetch.
type DetailOptions struct {
	SpiderDepth     int
	MaxLinksPerPage int
	SameDomainOnly  bool
}
