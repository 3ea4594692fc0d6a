package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"opencourt.dev/availability"
	"opencourt.dev/timefmt"
)

// AlbanyScraper reads tennis court availability from the City of Albany's
// WebTrac reservation search. The search result is a server-rendered page
// listing parks, courts, and per-slot time ranges; booked slots carry an
// "Unavailable" marker on the following line.
type AlbanyScraper struct {
	client  *http.Client
	baseURL string
}

// WebTrac lists nothing before its configured opening; querying from 05:00
// returns the full day.
const albanyBeginTime = "05:00 am"

// NewAlbanyScraper creates a scraper for Albany, CA tennis courts.
func NewAlbanyScraper() *AlbanyScraper {
	return &AlbanyScraper{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://caalbanyweb.myvscloud.com/webtrac/web/search.html",
	}
}

func (s *AlbanyScraper) CityName() string {
	return "Albany"
}

func (s *AlbanyScraper) Fetch(ctx context.Context, date string) ([]availability.Slot, error) {
	q := url.Values{
		"module":    {"FR"},
		"FRClass":   {"TENNI"},
		"date":      {date},
		"begintime": {albanyBeginTime},
		"Action":    {"Start"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// WebTrac serves an empty shell to clients that don't look like a
	// browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://caalbanyweb.myvscloud.com/")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch albany search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("albany search page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read albany search page: %w", err)
	}

	text, err := pageText(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse albany search page: %w", err)
	}

	return parseAlbanyListing(text, date), nil
}

var slotTimePattern = regexp.MustCompile(`^(\d{1,2}:\d{2} [ap]m)\s*-\s*(\d{1,2}:\d{2} [ap]m)`)

// parseAlbanyListing walks the cleaned page text line by line. The listing
// interleaves court headers, park headers, and slot lines; a court header
// applies to every slot line until the next one.
func parseAlbanyListing(text, date string) []availability.Slot {
	var slots []availability.Slot
	var courtName, parkName string

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch {
		case strings.Contains(line, "Tennis Court") || strings.Contains(line, "Tennis Terrace"):
			courtName = line
		case strings.Contains(line, "Park"):
			parkName = line
		default:
			m := slotTimePattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			start, err := timefmt.To24h(m[1])
			if err != nil {
				continue
			}
			end, err := timefmt.To24h(m[2])
			if err != nil {
				continue
			}

			status := availability.Available
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "Unavailable" {
				status = availability.Unavailable
				i++ // consume the marker line
			}

			slots = append(slots, availability.Slot{
				Date:         date,
				CityName:     "Albany",
				ParkName:     parkName,
				CourtName:    courtName,
				StartTime:    start,
				EndTime:      end,
				Availability: status,
			})
		}
	}
	return slots
}

// pageText strips script, style, and head content and returns the visible
// text one node per line, which is what the listing parser walks.
func pageText(body string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "title", "meta":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String(), nil
}
