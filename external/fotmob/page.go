package fotmob

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
)

func (c *Client) matchPageURL(matchID int64) string {
	return c.pageURL + "/match/" + strconv.FormatInt(matchID, 10)
}

func (c *Client) matchDetailsFromPage(ctx context.Context, matchID int64) (matchDetailsPayload, error) {
	pageURL := c.matchPageURL(matchID)

	raw, err := c.fetch(ctx, pageURL, "text/html")
	if err == nil {
		payload, parseErr := parseNextData(string(raw))
		if parseErr == nil {
			return payload, nil
		}
		err = parseErr
	}
	if c.renderer == nil || !crerr.Is(err, feed.ErrBlocked) {
		return matchDetailsPayload{}, err
	}

	c.logger.WarnContext(ctx, "match page blocked, rendering in browser", "match_id", matchID)
	html, renderErr := c.renderer.Render(ctx, pageURL)
	if renderErr != nil {
		return matchDetailsPayload{}, crerr.Mark(crerr.Wrap(renderErr, "render match page"), feed.ErrBlocked)
	}
	return parseNextData(html)
}

// parseNextData extracts the match payload embedded by the page in script#__NEXT_DATA__.
// A page without it is an anti-bot challenge.
func parseNextData(html string) (matchDetailsPayload, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return matchDetailsPayload{}, fmt.Errorf("parse match page: %w", err)
	}

	script := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if script == "" {
		return matchDetailsPayload{}, crerr.Wrap(feed.ErrBlocked, "match page without __NEXT_DATA__")
	}

	var document nextDataDocument
	if err := sonic.UnmarshalString(script, &document); err != nil {
		return matchDetailsPayload{}, fmt.Errorf("decode __NEXT_DATA__: %w", err)
	}
	return document.Props.PageProps, nil
}
