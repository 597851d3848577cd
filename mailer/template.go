package mailer

import (
	"bytes"
	"fmt"
	"html"
	"io/fs"
	"net/url"
	"strings"

	"agency-cms/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	LayoutNewsletter = "newsletter.html"
	LayoutJoin       = "newsletter-join.html"
)

// Renderer fills email layouts. Placeholders have the form {{name}}.
type Renderer struct {
	layouts     fs.FS
	md          goldmark.Markdown
	policy      *bluemonday.Policy
	publicURL   string
	frontendURL string
}

func NewRenderer(layouts fs.FS, publicURL, frontendURL string) *Renderer {
	return &Renderer{
		layouts: layouts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		policy:      bluemonday.UGCPolicy(),
		publicURL:   strings.TrimRight(publicURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Layout reads a layout file.
func (r *Renderer) Layout(name string) (string, error) {
	b, err := fs.ReadFile(r.layouts, name)
	if err != nil {
		return "", fmt.Errorf("read layout %s: %w", name, err)
	}
	return string(b), nil
}

// JoinConfirmation renders the double opt-in email for a member.
func (r *Renderer) JoinConfirmation(memberID string) (string, error) {
	layout, err := r.Layout(LayoutJoin)
	if err != nil {
		return "", err
	}
	return Fill(layout, map[string]string{
		"memberId":   memberID,
		"confirmUrl": r.ConfirmURL(memberID),
	}), nil
}

// Newsletter fills the newsletter fields of layout. Member placeholders are
// left for Personalize.
func (r *Renderer) Newsletter(layout string, n *models.Newsletter) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(n.Content), &buf); err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}

	return Fill(layout, map[string]string{
		"title":   html.EscapeString(n.Title),
		"content": r.policy.Sanitize(buf.String()),
		"photo":   r.PhotoURL(n.Photo),
	}), nil
}

// Personalize fills the per-recipient placeholders.
func (r *Renderer) Personalize(body, memberID string) string {
	return Fill(body, map[string]string{
		"memberId":       memberID,
		"unsubscribeUrl": r.UnsubscribeURL(memberID),
	})
}

func (r *Renderer) ConfirmURL(memberID string) string {
	return r.publicURL + "/api/v1/public/newsletters/activate?memberId=" + url.QueryEscape(memberID)
}

func (r *Renderer) UnsubscribeURL(memberID string) string {
	return r.frontendURL + "/newsletters/unsubscribe?memberId=" + url.QueryEscape(memberID)
}

// ThankYouURL is where a confirmed member is redirected.
func (r *Renderer) ThankYouURL(memberID string) string {
	return r.frontendURL + "/newsletters/" + url.PathEscape(memberID) + "/thank-you"
}

func (r *Renderer) PhotoURL(photo string) string {
	if photo == "" {
		return ""
	}
	return r.publicURL + "/uploads/newsletter/" + url.PathEscape(photo)
}

// Fill replaces every {{key}} in s with its value. Unknown placeholders are kept.
func Fill(s string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
