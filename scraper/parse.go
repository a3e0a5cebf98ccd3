package scraper

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/cinescrape/fieldname"
	"github.com/use-agent/cinescrape/models"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// parseDocument parses rendered HTML into a goquery document.
func parseDocument(rawHTML string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse page HTML", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// ParseListing extracts one ListingItem per .film-item, in DOM order.
// url and img are the href and src attributes as written in the page.
func ParseListing(rawHTML string) ([]models.ListingItem, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	items := []models.ListingItem{}
	doc.FindMatcher(selFilmItem).Each(func(i int, s *goquery.Selection) {
		a := s.FindMatcher(selItemAnchor).First()
		if a.Length() == 0 {
			slog.Debug("listing: film item without anchor, skipped", "index", i)
			return
		}
		href, _ := a.Attr("href")
		title, _ := a.Attr("title")
		src, _ := s.FindMatcher(selItemImage).First().Attr("src")

		items = append(items, models.ListingItem{
			URL:   strings.TrimSpace(href),
			Title: strings.TrimSpace(title),
			Img:   strings.TrimSpace(src),
		})
	})
	return items, nil
}

// ParseDetails extracts a movie's description, watch link, large
// thumbnail and labelled info fields from a detail page.
func ParseDetails(rawHTML, pageURL string) (*models.MovieInfo, error) {
	doc, err := parseDocument(rawHTML)
	if err != nil {
		return nil, err
	}

	content := doc.FindMatcher(selFilmContent)
	if content.Length() == 0 && doc.FindMatcher(selInfoList).Length() == 0 {
		return nil, models.NewScrapeError(models.ErrCodeSelectorNotFound,
			"page has neither .film-content nor .info-y; not a movie detail page", nil)
	}
	base, _ := url.Parse(pageURL)

	info := &models.MovieInfo{
		Description: strings.TrimSpace(content.First().Text()),
	}

	if href, ok := doc.FindMatcher(selPosterAnchor).First().Attr("href"); ok {
		info.WatchURL = resolve(base, href)
	}

	doc.FindMatcher(selContentPara).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		src, ok := p.FindMatcher(selImage).First().Attr("src")
		if !ok || src == "" {
			return true
		}
		info.LargeThumbnail = resolve(base, src)
		return false
	})

	doc.FindMatcher(selInfoItem).Each(func(_ int, li *goquery.Selection) {
		label := li.FindMatcher(selLabel).First()
		if label.Length() == 0 {
			return
		}
		raw := fieldname.StripLabel(label.Text())
		if raw == "" {
			return
		}
		name, err := fieldname.Translate(raw)
		if err != nil {
			name = norm.NFC.String(raw)
			slog.Debug("details: unmapped label kept under its source name",
				"label", name, "known", fieldname.Labels())
		}

		if span := li.FindMatcher(selSpan).First(); span.Length() > 0 {
			info.Set(name, models.TextValue(strings.TrimSpace(span.Text())))
			return
		}
		texts := li.FindMatcher(selItemAnchor).Map(func(_ int, a *goquery.Selection) string {
			return strings.TrimSpace(a.Text())
		})
		info.Set(name, models.ListValue(texts))
	})

	return info, nil
}

// resolve turns ref into an absolute URL against base. Unparseable refs
// and a nil base leave ref as-is.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
