package source

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	apperrors "mfspulse/internal/errors"
	"mfspulse/pkg/contracts/domain"
)

// MarkupAdapter extracts the statistics table from the portal's HTML page.
// The page carries several tables (navigation, layout scaffolding); the
// widest one with a plausible header row wins, mirroring how the upstream
// publication has historically placed the data.
type MarkupAdapter struct {
	fetcher Fetcher
	url     string
	logger  *slog.Logger
}

// NewMarkupAdapter creates the HTML-table adapter.
func NewMarkupAdapter(fetcher Fetcher, url string, logger *slog.Logger) *MarkupAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkupAdapter{
		fetcher: fetcher,
		url:     url,
		logger:  logger.With(slog.String("component", "markup_adapter")),
	}
}

// Name implements Adapter.
func (a *MarkupAdapter) Name() string { return string(domain.SourceMarkup) }

// Fetch implements Adapter.
func (a *MarkupAdapter) Fetch(ctx context.Context) (*domain.RawTable, error) {
	payload, err := a.fetcher.Fetch(ctx, a.url)
	if err != nil {
		return nil, err
	}
	return a.Extract(payload)
}

// Extract parses the markup and returns the widest data table.
func (a *MarkupAdapter) Extract(payload []byte) (*domain.RawTable, error) {
	doc, err := html.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse markup", err)
	}

	tables := extractTables(doc)
	a.logger.Debug("tables found in markup", slog.Int("count", len(tables)))

	var best [][]string
	for _, grid := range tables {
		if len(grid) < 2 || len(grid[0]) < 2 {
			continue
		}
		if best == nil || len(grid[0]) > len(best[0]) {
			best = grid
		}
	}
	if best == nil {
		return nil, apperrors.NewSchemaError("no data table found in markup", nil)
	}

	return &domain.RawTable{
		Source:  domain.SourceMarkup,
		Headers: best[0],
		Rows:    best[1:],
	}, nil
}

// extractTables walks the node tree and returns every <table> as a grid of
// trimmed cell texts.
func extractTables(root *html.Node) [][][]string {
	var tables [][][]string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if grid := extractGrid(n); len(grid) > 0 {
				tables = append(tables, grid)
			}
			return // nested tables inside a data table are layout noise
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return tables
}

func extractGrid(table *html.Node) [][]string {
	var grid [][]string

	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, strings.TrimSpace(nodeText(c)))
				}
			}
			if len(row) > 0 {
				grid = append(grid, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkRows(c)
		}
	}
	walkRows(table)
	return grid
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	// Collapse interior whitespace left by markup indentation.
	return strings.Join(strings.Fields(sb.String()), " ")
}
