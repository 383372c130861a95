package page

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestSpiderDepthZeroFetchesNothing(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	spider := NewSpider(zap.NewNop())
	collected := spider.Follow([]string{server.URL + "/a"}, 0, 3, false, "")

	if collected != nil {
		t.Errorf("expected nil, got %v", collected)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("expected zero fetches, got %d", hits)
	}
}

func TestSpiderEmptyLinksFetchesNothing(t *testing.T) {
	spider := NewSpider(zap.NewNop())
	if collected := spider.Follow(nil, 2, 3, false, ""); collected != nil {
		t.Errorf("expected nil, got %v", collected)
	}
}

// Every page links to three children; with maxLinks 2 and depth 2 the total
// fetch count must stay within 2^2.
func TestSpiderBoundsFanOut(t *testing.T) {
	var hits int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><head><title>page %s</title></head><body>
			<p>Some paragraph content on %s.</p>
			<a href="%s%s/c1">one</a>
			<a href="%s%s/c2">two</a>
			<a href="%s%s/c3">three</a>
		</body></html>`,
			r.URL.Path, r.URL.Path,
			server.URL, r.URL.Path,
			server.URL, r.URL.Path,
			server.URL, r.URL.Path)
	}))
	defer server.Close()

	const depth, maxLinks = 2, 2

	spider := NewSpider(zap.NewNop())
	collected := spider.Follow([]string{server.URL + "/a", server.URL + "/b", server.URL + "/c"},
		depth, maxLinks, false, "")

	budget := 1
	for i := 0; i < depth; i++ {
		budget *= maxLinks
	}
	if got := atomic.LoadInt32(&hits); int(got) > budget {
		t.Errorf("fetched %d pages, budget is %d", got, budget)
	}
	if len(collected) == 0 {
		t.Fatal("expected collected pages")
	}
	if int(atomic.LoadInt32(&hits)) != len(collected) {
		t.Errorf("every fetched page should be collected: %d fetched, %d collected",
			hits, len(collected))
	}

	for _, content := range collected {
		if content.Relation != RelationLinked && content.Relation != RelationNested {
			t.Errorf("unexpected relation %q", content.Relation)
		}
		if content.Title == "" {
			t.Errorf("missing title for %s", content.URL)
		}
		if content.ContentSnippet == "" {
			t.Errorf("missing snippet for %s", content.URL)
		}
	}
}

// A link back to an already-visited page must not consume one of the
// maxLinks slots; the fresh links after it still get followed.
func TestSpiderDuplicateLinksDoNotConsumeSlots(t *testing.T) {
	var hits int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/seed" {
			fmt.Fprintf(w, `<html><head><title>seed</title></head><body>
				<p>The seed page paragraph.</p>
				<a href="%s/seed">self</a>
				<a href="%s/c1">one</a>
				<a href="%s/c2">two</a>
			</body></html>`, server.URL, server.URL, server.URL)
			return
		}
		fmt.Fprintf(w, `<html><head><title>child %s</title></head><body>
			<p>Child page paragraph for %s.</p>
		</body></html>`, r.URL.Path, r.URL.Path)
	}))
	defer server.Close()

	spider := NewSpider(zap.NewNop())
	collected := spider.Follow([]string{server.URL + "/seed"}, 2, 2, false, "")

	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("expected seed plus two children fetched, got %d", got)
	}
	if len(collected) != 3 {
		t.Fatalf("collected %d pages: %+v", len(collected), collected)
	}
}

func TestSpiderSameDomainSkipsForeignSeeds(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>home</title></head><body><p>hello world content</p></body></html>"))
	}))
	defer server.Close()

	domain := server.Listener.Addr().String()

	spider := NewSpider(zap.NewNop())
	collected := spider.Follow(
		[]string{"http://forbidden.invalid/x", server.URL + "/ok"},
		1, 3, true, domain)

	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected exactly one fetch, got %d", hits)
	}
	if len(collected) != 1 {
		t.Fatalf("collected = %v", collected)
	}
	if collected[0].Relation != RelationLinked {
		t.Errorf("relation = %q, want %q", collected[0].Relation, RelationLinked)
	}
}
