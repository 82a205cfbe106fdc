package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tenderscan/internal/fetch"
)

const nicListingPage = `<html><body>
<table id="table1">
<tr><th>S.No</th><th>Ref No</th><th>Title</th><th>Organisation</th><th>Published</th><th>Closing</th><th>Value</th></tr>
<tr>
  <td>1</td>
  <td><a href="/tender/2026_HSL_001">2026_HSL_001</a></td>
  <td>Hull painting and blasting works</td>
  <td>Eastern Naval Command, Visakhapatnam</td>
  <td>20-08-2026</td>
  <td>05-Sep-2026</td>
  <td>₹ 3.5 Lakh</td>
</tr>
<tr>
  <td>2</td>
  <td>2026_HSL_002</td>
  <td><a href="https://example.gov.in/detail/2">Supply of marine grade paint</a></td>
  <td>Naval Dockyard</td>
  <td>21-08-2026</td>
  <td>10-Sep-2026</td>
  <td>Refer document</td>
</tr>
</table>
</body></html>`

const nicEmptyPage = `<html><body><p>No Records found for the search criteria</p></body></html>`

func testDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Fetch:        fetch.NewClient(time.Millisecond, fetch.DefaultRetryPolicy(), nil),
		MaxPages:     10,
		LookbackDays: 30,
		Now:          func() time.Time { return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) },
	}
}

func TestNICParseListing(t *testing.T) {
	p := &nicPortal{
		key:        "test",
		name:       "Test Portal",
		base:       "https://example.gov.in",
		listURL:    "https://example.gov.in/list?page=x",
		scanBudget: true,
	}

	tenders := p.parseListing(nicListingPage, 1)
	if len(tenders) != 2 {
		t.Fatalf("expected 2 tenders, got %d", len(tenders))
	}

	first := tenders[0]
	if first.TenderID != "2026_HSL_001" {
		t.Errorf("tender id = %q, want 2026_HSL_001", first.TenderID)
	}
	if first.Title != "Hull painting and blasting works" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Department != "Eastern Naval Command, Visakhapatnam" {
		t.Errorf("department = %q", first.Department)
	}
	if first.URL != "https://example.gov.in/tender/2026_HSL_001" {
		t.Errorf("url = %q", first.URL)
	}
	if first.PublishedDate == nil || first.PublishedDate.Day() != 20 || first.PublishedDate.Month() != time.August {
		t.Errorf("published = %v, want 20 Aug 2026", first.PublishedDate)
	}
	if first.Deadline == nil || first.Deadline.Day() != 5 || first.Deadline.Month() != time.September {
		t.Errorf("deadline = %v, want 05 Sep 2026", first.Deadline)
	}
	if first.BudgetMax == nil || *first.BudgetMax != 350000 {
		t.Errorf("budget max = %v, want 350000", first.BudgetMax)
	}
	if first.BudgetRaw != "₹ 3.5 Lakh" {
		t.Errorf("budget raw = %q", first.BudgetRaw)
	}

	second := tenders[1]
	if second.URL != "https://example.gov.in/detail/2" {
		t.Errorf("absolute url kept as-is, got %q", second.URL)
	}
	if second.BudgetMax != nil {
		t.Errorf("non-numeric budget should stay nil, got %v", *second.BudgetMax)
	}
	if second.BudgetRaw != "" {
		t.Errorf("cells without a money hint should be skipped, got raw %q", second.BudgetRaw)
	}
}

func TestNICParseListingEmptyTableShell(t *testing.T) {
	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    "https://example.gov.in",
		listURL: "https://example.gov.in/list?page=x",
	}

	// Some NIC pages render the table element with no rows at all; others
	// keep only the header row. Both mean "no tenders on this page".
	for name, html := range map[string]string{
		"no rows":     `<html><body><table id="table1"></table></body></html>`,
		"header only": `<html><body><table id="table1"><tr><th>S.No</th><th>Ref No</th></tr></table></body></html>`,
	} {
		if got := p.parseListing(html, 1); len(got) != 0 {
			t.Errorf("%s: expected empty batch, got %d tenders", name, len(got))
		}
	}
}

func TestNICRunKeepsEarlierPagesOnEmptyTableShell(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("pageIndex") == "1" {
			fmt.Fprint(w, nicListingPage)
			return
		}
		fmt.Fprint(w, `<html><body><table id="table1"></table></body></html>`)
	}))
	defer srv.Close()

	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    srv.URL,
		listURL: srv.URL + "/list?page=x",
		deps:    testDeps(t),
	}

	tenders := p.Run(context.Background())
	if len(tenders) != 2 {
		t.Fatalf("expected page 1 tenders to survive the empty shell, got %d", len(tenders))
	}
	if hits != 2 {
		t.Errorf("expected run to stop at the empty shell, got %d fetches", hits)
	}
}

func TestNICRunStopsOnEmptyPage(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("pageIndex") == "1" {
			fmt.Fprint(w, nicListingPage)
			return
		}
		fmt.Fprint(w, nicEmptyPage)
	}))
	defer srv.Close()

	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    srv.URL,
		listURL: srv.URL + "/list?page=x",
		deps:    testDeps(t),
	}

	tenders := p.Run(context.Background())
	if len(tenders) != 2 {
		t.Fatalf("expected 2 tenders, got %d", len(tenders))
	}
	if hits != 2 {
		t.Errorf("expected pagination to stop after the empty page, got %d fetches", hits)
	}
}

func TestNICRunStopsAtCutoff(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, nicListingPage)
	}))
	defer srv.Close()

	deps := testDeps(t)
	deps.LookbackDays = 1 // cutoff 25 Aug; listing rows are published 20-21 Aug

	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    srv.URL,
		listURL: srv.URL + "/list?page=x",
		deps:    deps,
	}

	tenders := p.Run(context.Background())
	if hits != 1 {
		t.Errorf("expected cutoff to stop after page 1, got %d fetches", hits)
	}
	// The batch that crossed the cutoff is still returned.
	if len(tenders) != 2 {
		t.Errorf("expected the crossing batch to be kept, got %d tenders", len(tenders))
	}
}

func TestNICRunStopsOnFetchFailure(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Query().Get("pageIndex") == "1" {
			fmt.Fprint(w, nicListingPage)
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    srv.URL,
		listURL: srv.URL + "/list?page=x",
		deps:    testDeps(t),
	}

	tenders := p.Run(context.Background())
	if len(tenders) != 2 {
		t.Fatalf("expected page 1 results to survive the failure, got %d", len(tenders))
	}
	if hits != 2 {
		t.Errorf("expected run to stop at the failed page, got %d fetches", hits)
	}
}

func TestNICRunFallsBackToBrowserOnJSShell(t *testing.T) {
	shell := `<html><body><noscript>enable JS</noscript>Loading...</body></html>`
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, shell)
	}))
	defer srv.Close()

	session := &fakeSession{pages: []string{nicListingPage, nicEmptyPage}}
	deps := testDeps(t)
	deps.Browser = &fakeBrowser{session: session}

	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    srv.URL,
		listURL: srv.URL + "/list?page=x",
		deps:    deps,
	}

	tenders := p.Run(context.Background())
	if len(tenders) != 2 {
		t.Fatalf("expected the rendered listing's tenders, got %d", len(tenders))
	}
	if hits != 1 {
		t.Errorf("plain fetch should stop after detecting the shell, got %d fetches", hits)
	}
	if len(session.navs) != 2 {
		t.Errorf("expected browser pagination until the empty page, got %d navigations", len(session.navs))
	}
	if !session.closed {
		t.Error("browser session was not closed")
	}
}

func TestNICRunWithoutBrowserDegradesOnJSShell(t *testing.T) {
	shell := `<html><body><noscript>enable JS</noscript>Loading...</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, shell)
	}))
	defer srv.Close()

	p := &nicPortal{
		key:     "test",
		name:    "Test Portal",
		base:    srv.URL,
		listURL: srv.URL + "/list?page=x",
		deps:    testDeps(t),
	}

	if got := p.Run(context.Background()); got != nil {
		t.Fatalf("expected nil without a configured browser, got %d tenders", len(got))
	}
}

func TestScanDatesOrder(t *testing.T) {
	published, deadline := scanDates([]string{"n/a", "20-08-2026", "₹ 5 Lakh", "05-Sep-2026 3:30 PM"})
	if published == nil || published.Day() != 20 {
		t.Fatalf("published = %v, want 20 Aug", published)
	}
	if deadline == nil || deadline.Day() != 5 || deadline.Hour() != 15 {
		t.Fatalf("deadline = %v, want 05 Sep 15:30", deadline)
	}

	published, deadline = scanDates([]string{"only text"})
	if published != nil || deadline != nil {
		t.Errorf("expected no dates from unparseable cells, got %v / %v", published, deadline)
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := map[string]bool{
		"14-01-2026 1:26 PM": true,
		"02-Jan-2026":        true,
		"January 2, 2026":    true,
		"tomorrow":           false,
		"":                   false,
	}
	for raw, want := range cases {
		got := parseDate(raw) != nil
		if got != want {
			t.Errorf("parseDate(%q) parsed=%v, want %v", raw, got, want)
		}
	}
}
