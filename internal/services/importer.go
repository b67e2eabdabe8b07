package services

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"inkwell/internal/models"
	"inkwell/internal/session"
)

const defaultImportLimit = 10

// ImportRequest pulls entries of an RSS or Atom feed into articles.
type ImportRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Category string `json:"category" validate:"required,category"`
	Limit    int    `json:"limit" validate:"gte=0,lte=50"`
	Since    string `json:"since"`
	FullText bool   `json:"fullText"` // fetch each entry's page instead of using the feed body
	Draft    bool   `json:"draft"`
}

type ImportResult struct {
	Feed     string           `json:"feed"`
	Imported []models.Article `json:"imported"`
	Skipped  int              `json:"skipped"`
}

// Importer turns feed entries into articles authored by the session user.
type Importer struct {
	content *ContentService
	parser  *gofeed.Parser
	crawler *Crawler
	log     zerolog.Logger
}

func NewImporter(content *ContentService, client *http.Client, log zerolog.Logger) *Importer {
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		}
	}
	parser := gofeed.NewParser()
	parser.Client = client

	return &Importer{
		content: content,
		parser:  parser,
		crawler: NewCrawler(client),
		log:     log.With().Str("component", "importer").Logger(),
	}
}

// Import reads the feed and creates one article per new entry. Entries whose
// title the user already published are skipped, so importing twice is harmless.
func (im *Importer) Import(ctx context.Context, sess session.Session, req ImportRequest) (*ImportResult, error) {
	if !sess.IsAuthenticated() {
		return nil, NewAuthRequiredError("sign in to import articles")
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := validateInput("invalid import", req); err != nil {
		return nil, err
	}
	since, err := ParseSince(req.Since)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultImportLimit
	}

	feed, err := im.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		im.log.Warn().Err(err).Str("url", req.URL).Msg("Feed fetch failed")
		return nil, NewValidationError(fmt.Sprintf("could not read feed: %v", err), map[string]string{"url": "feed"})
	}

	existing, err := im.content.ListArticles(ctx, sess)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, a := range existing {
		if a.AuthorID == sess.User.ID {
			seen[strings.ToLower(a.Title)] = true
		}
	}

	res := &ImportResult{Feed: feed.Title, Imported: []models.Article{}}
	for _, item := range feed.Items {
		if len(res.Imported) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" || seen[strings.ToLower(title)] {
			res.Skipped++
			continue
		}
		if !since.IsZero() {
			if t, ok := itemTime(item); ok && t.Before(since) {
				res.Skipped++
				continue
			}
		}

		draft := ArticleDraft{
			Title:      title,
			Content:    im.itemBody(ctx, item, req.FullText),
			Category:   req.Category,
			Tags:       importTags(item.Categories),
			CoverImage: itemImage(item),
			Format:     FormatHTML,
			Status:     models.StatusPublished,
		}
		if req.Draft {
			draft.Status = models.StatusDraft
		}

		a, err := im.content.CreateArticle(ctx, sess, draft)
		if err != nil {
			im.log.Warn().Err(err).Str("title", title).Msg("Skipping feed entry")
			res.Skipped++
			continue
		}
		seen[strings.ToLower(title)] = true
		res.Imported = append(res.Imported, *a)
	}

	im.log.Info().
		Str("feed", feed.Title).
		Str("user_id", sess.User.ID).
		Int("imported", len(res.Imported)).
		Int("skipped", res.Skipped).
		Msg("Feed imported")
	return res, nil
}

// itemBody 优先 content:encoded，其次 description；全文抓取失败时回退
func (im *Importer) itemBody(ctx context.Context, item *gofeed.Item, fullText bool) string {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	if fullText && item.Link != "" {
		if page, err := im.crawler.FetchArticleContent(ctx, item.Link); err != nil {
			im.log.Warn().Err(err).Str("link", item.Link).Msg("Full text fetch failed, using feed body")
		} else if strings.TrimSpace(page) != "" {
			body = page
		}
	}
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if item.Link != "" {
		link := html.EscapeString(item.Link)
		body += `<p>Source: <a href="` + link + `">` + link + `</a></p>`
	}
	return body
}

func itemTime(item *gofeed.Item) (time.Time, bool) {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed, true
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed, true
	case item.Published != "":
		if t, err := dateparse.ParseIn(item.Published, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func itemImage(item *gofeed.Item) string {
	if item.Image == nil {
		return ""
	}
	u, err := url.Parse(item.Image.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

func importTags(categories []string) []string {
	tags := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || len([]rune(c)) > 32 {
			continue
		}
		tags = append(tags, c)
		if len(tags) == 10 {
			break
		}
	}
	return tags
}
