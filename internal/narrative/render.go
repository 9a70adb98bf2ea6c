// Package narrative prepares stage-1 reports for display.
package narrative

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Clean strips an outer code fence the model sometimes wraps its report in.
func Clean(report string) string {
	s := strings.TrimSpace(report)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(s)
}

// ToHTML renders a markdown report as HTML. Inline HTML written by the model
// passes through the renderer and is then stripped of active content.
func ToHTML(report string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Clean(report)), &buf); err != nil {
		return "", fmt.Errorf("rendering narrative: %w", err)
	}
	return sanitize(buf.String())
}

const blockedTags = "script, style, iframe, object, embed, form"

func sanitize(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing narrative html: %w", err)
	}
	doc.Find(blockedTags).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		var drop []string
		for _, a := range s.Nodes[0].Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") || key == "style" || key == "srcset" ||
				(urlAttrs[key] && !safeURL(a.Val)) {
				drop = append(drop, a.Key)
			}
		}
		for _, k := range drop {
			s.RemoveAttr(k)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialising narrative html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

var urlAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"poster": true, "background": true, "cite": true, "xlink:href": true, "data": true,
}

var allowedSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// safeURL accepts relative URLs and absolute URLs with an allowed scheme.
// Whitespace and control characters are ignored the way browsers ignore them.
func safeURL(raw string) bool {
	u := strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)

	colon := strings.IndexByte(u, ':')
	if colon < 0 {
		return true
	}
	if i := strings.IndexAny(u, "/?#"); i >= 0 && i < colon {
		return true
	}
	return allowedSchemes[strings.ToLower(u[:colon])]
}

// PlainText flattens a report that may contain HTML markup to its text.
func PlainText(report string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(report))
	if err != nil {
		return report
	}
	doc.Find(blockedTags).Remove()
	return strings.TrimSpace(doc.Text())
}

// Summary is the fixed two-part conclusion every report ends with.
type Summary struct {
	Recommendation string `json:"recommendation"`
	Justification  string `json:"justification"`
}

var (
	recommendationRe = regexp.MustCompile(`(?is)recomenda[çc][ãa]o preliminar:?\s*(?:\*\*)?:?\s*(.*?)\s*(?:\*\*)?\s*justificativa`)
	justificationRe  = regexp.MustCompile(`(?is)justificativa:?\s*(?:\*\*)?:?\s*(.*)$`)
)

// Summarize pulls the recommendation and justification out of a report.
// Missing parts are returned empty.
func Summarize(report string) Summary {
	text := PlainText(report)
	var s Summary
	if m := recommendationRe.FindStringSubmatch(text); m != nil {
		s.Recommendation = strings.Trim(strings.TrimSpace(m[1]), "*- ")
	}
	if m := justificationRe.FindStringSubmatch(text); m != nil {
		s.Justification = strings.Trim(strings.TrimSpace(m[1]), "*- ")
	}
	return s
}
