package handlers

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/session"
	"inkwell/internal/utils"
)

const feedItems = 20

var blockRe = regexp.MustCompile(`(?s)(<(?:p|div|h[1-6]|ul|ol|blockquote|pre)[^>]*>.*?</(?:p|div|h[1-6]|ul|ol|blockquote|pre)>)`)

type SEOHandler struct {
	content *services.ContentService
	siteURL string
	now     func() time.Time
}

func NewSEOHandler(content *services.ContentService, siteURL string) *SEOHandler {
	return &SEOHandler{content: content, siteURL: strings.TrimRight(siteURL, "/"), now: time.Now}
}

// RobotsTxt 返回 robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 禁止爬取写接口
Disallow: /api/auth/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

// SitemapXML lists the category pages and every published article.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	articles, err := h.content.ListArticles(c.Request.Context(), session.Anonymous())
	if err != nil {
		RespondError(c, err)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	fmt.Fprintf(&b, "  <url>\n    <loc>%s/</loc>\n    <changefreq>hourly</changefreq>\n    <priority>1.0</priority>\n  </url>\n", h.siteURL)
	for _, cat := range models.Categories {
		fmt.Fprintf(&b, "  <url>\n    <loc>%s/api/articles?category=%s</loc>\n    <changefreq>daily</changefreq>\n    <priority>0.6</priority>\n  </url>\n", h.siteURL, cat.Name)
	}
	for _, a := range articles {
		fmt.Fprintf(&b, "  <url>\n    <loc>%s/api/articles/%s</loc>\n    <lastmod>%s</lastmod>\n    <changefreq>weekly</changefreq>\n    <priority>0.8</priority>\n  </url>\n",
			h.siteURL, a.ID, a.UpdatedAt.Format("2006-01-02"))
	}
	b.WriteString(`</urlset>`)

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// RSSFeed 生成 RSS 2.0 feed，最新 20 篇
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	articles, err := h.content.ListArticles(c.Request.Context(), session.Anonymous())
	if err != nil {
		RespondError(c, err)
		return
	}
	if len(articles) > feedItems {
		articles = articles[:feedItems]
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Inkwell</title>
    <link>` + h.siteURL + `</link>
    <description>Stories worth reading, from writers worth following</description>
    <language>en</language>
    <lastBuildDate>` + h.now().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + h.siteURL + `/feed.xml" rel="self" type="application/rss+xml"/>
`)

	for _, a := range articles {
		link := fmt.Sprintf("%s/api/articles/%s", h.siteURL, a.ID)
		content := truncateByParagraph(a.Content, 3)
		content += fmt.Sprintf(`<p><a href="%s">Continue reading →</a></p>`, link)

		b.WriteString(`    <item>
      <title>` + escapeXML(a.Title) + `</title>
      <link>` + link + `</link>
      <description><![CDATA[` + content + `]]></description>
      <author>` + escapeXML(a.Author.DisplayName) + `</author>
      <category>` + escapeXML(a.Category) + `</category>
      <pubDate>` + a.PublishedAt.Format(time.RFC1123Z) + `</pubDate>
      <guid isPermaLink="true">` + link + `</guid>
    </item>
`)
	}

	b.WriteString(`  </channel>
</rss>`)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func escapeXML(s string) string {
	return html.EscapeString(s)
}

// truncateByParagraph keeps the first maxBlocks block elements of content.
func truncateByParagraph(content string, maxBlocks int) string {
	matches := blockRe.FindAllString(content, maxBlocks)
	if len(matches) == 0 {
		runes := []rune(utils.StripHTML(content))
		if len(runes) > 300 {
			return string(runes[:300]) + "..."
		}
		return content
	}
	return strings.Join(matches, "\n")
}
