package portal

import (
	"context"
	"errors"
	"testing"

	"tenderscan/internal/ports"
)

const gemCardsPage = `<html><body>
<div class="card">
  <div class="col-md-4">
    <div class="row"><a data-content="Marine Grade Epoxy Paint - 500 Litre">Items: Marine Grade Epo...</a></div>
  </div>
  <div class="col-md-5">
    <div class="row">Department Name And Address</div>
    <div class="row">Ministry Of Defence<br/>Department Of Defence<br/>Hindustan Shipyard Limited Visakhapatnam</div>
  </div>
  <a class="bid_no_hover" href="/showbidDocument/100">GEM/2026/B/100</a>
  <span class="start_date">14-08-2026 1:26 PM</span>
  <span class="end_date">04-09-2026 3:00 PM</span>
</div>
<div class="card">
  <div class="col-md-4">
    <div class="row"><a>Items: Hull cleaning service</a></div>
  </div>
  <a class="bid_no_hover">GEM/2026/B/101</a>
  <span class="start_date">15-08-2026 9:00 AM</span>
</div>
</body></html>`

// fakeSession scripts the browser interactions for one or more searches.
type fakeSession struct {
	pages     []string // HTML returned per HTML() call, last page repeats
	htmlCalls int
	navs      []string
	typed     []string
	clickErr  error
	clicks    int
	closed    bool
}

func (s *fakeSession) Navigate(url, waitSelector string) error {
	s.navs = append(s.navs, url)
	return nil
}

func (s *fakeSession) FillAndSubmit(selector, text string) error {
	s.typed = append(s.typed, text)
	return nil
}

func (s *fakeSession) Click(selector string) error {
	s.clicks++
	return s.clickErr
}

func (s *fakeSession) HTML() (string, error) {
	i := s.htmlCalls
	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	s.htmlCalls++
	return s.pages[i], nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeBrowser struct {
	session *fakeSession
	err     error
}

func (b *fakeBrowser) NewSession(ctx context.Context) (ports.BrowserSession, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.session, nil
}

func TestParseGemCards(t *testing.T) {
	tenders := parseGemCards(gemCardsPage)
	if len(tenders) != 2 {
		t.Fatalf("expected 2 bids, got %d", len(tenders))
	}

	first := tenders[0]
	if first.TenderID != "GEM/2026/B/100" {
		t.Errorf("tender id = %q", first.TenderID)
	}
	if first.Title != "Marine Grade Epoxy Paint - 500 Litre" {
		t.Errorf("title should come from data-content, got %q", first.Title)
	}
	if first.Department != "Ministry Of Defence, Department Of Defence, Hindustan Shipyard Limited Visakhapatnam" {
		t.Errorf("department = %q", first.Department)
	}
	if first.Location != first.Department {
		t.Errorf("location should mirror the address block, got %q", first.Location)
	}
	if first.URL != "https://bidplus.gem.gov.in/showbidDocument/100" {
		t.Errorf("url = %q", first.URL)
	}
	if first.PublishedDate == nil || first.PublishedDate.Hour() != 13 {
		t.Errorf("published = %v, want 14 Aug 13:26", first.PublishedDate)
	}
	if first.Deadline == nil || first.Deadline.Day() != 4 {
		t.Errorf("deadline = %v, want 04 Sep", first.Deadline)
	}

	second := tenders[1]
	if second.Title != "Hull cleaning service" {
		t.Errorf("title fallback from Items row, got %q", second.Title)
	}
	if second.Deadline != nil {
		t.Errorf("missing end date should stay nil, got %v", second.Deadline)
	}
	if second.URL != gemAllBidsURL {
		t.Errorf("missing href falls back to the listing, got %q", second.URL)
	}
}

func TestGeMRunDedupesAcrossSearches(t *testing.T) {
	session := &fakeSession{
		pages:    []string{gemCardsPage},
		clickErr: errors.New("no next page"),
	}
	g := NewGeM(Deps{Browser: &fakeBrowser{session: session}}, []string{"painting", "hull cleaning"})

	tenders := g.Run(context.Background())
	if len(tenders) != 2 {
		t.Fatalf("expected both searches to collapse to 2 unique bids, got %d", len(tenders))
	}
	if len(session.typed) != 2 || session.typed[0] != "painting" || session.typed[1] != "hull cleaning" {
		t.Errorf("expected one search per work keyword, got %v", session.typed)
	}
	if len(session.navs) != 2 {
		t.Errorf("expected a fresh listing navigation per search, got %d", len(session.navs))
	}
	if !session.closed {
		t.Error("session was not closed")
	}
}

func TestGeMRunWithoutBrowser(t *testing.T) {
	g := NewGeM(Deps{}, []string{"painting"})
	if got := g.Run(context.Background()); got != nil {
		t.Fatalf("expected nil without a browser, got %d tenders", len(got))
	}

	g = NewGeM(Deps{Browser: &fakeBrowser{err: errors.New("launch failed")}}, []string{"painting"})
	if got := g.Run(context.Background()); got != nil {
		t.Fatalf("expected nil on session failure, got %d tenders", len(got))
	}
}
