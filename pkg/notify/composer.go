package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Site identifies the content site notifications are sent on behalf of.
type Site struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// untitledPlaceholder substitutes for entities saved without a title.
const untitledPlaceholder = "(no title)"

// footerDisclaimer closes every notification body.
const footerDisclaimer = "This is an automated notification from the post notification service."

// bodyParams feeds the per-kind body templates. Title and Author are escaped
// by html/template; Permalink, EditLink and TrashLink are pre-escaped URLs.
type bodyParams struct {
	SiteName     string
	SiteURL      string
	Title        string
	TypeLabel    string
	Author       string
	Permalink    string
	EditLink     string
	ScheduledFor string
	TrashLink    string
}

var (
	pendingTemplate   = template.New("pending")
	publishedTemplate = template.New("published")
	draftTemplate     = template.New("draft")
	scheduledTemplate = template.New("scheduled")
	updatedTemplate   = template.New("updated")
	trashedTemplate   = template.New("trashed")

	//go:embed templates/pending.html
	pendingTemplateRaw string
	//go:embed templates/published.html
	publishedTemplateRaw string
	//go:embed templates/draft.html
	draftTemplateRaw string
	//go:embed templates/scheduled.html
	scheduledTemplateRaw string
	//go:embed templates/updated.html
	updatedTemplateRaw string
	//go:embed templates/trashed.html
	trashedTemplateRaw string
)

func init() {
	if _, err := pendingTemplate.Parse(pendingTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := publishedTemplate.Parse(publishedTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := draftTemplate.Parse(draftTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := scheduledTemplate.Parse(scheduledTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := updatedTemplate.Parse(updatedTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := trashedTemplate.Parse(trashedTemplateRaw); err != nil {
		panic(err)
	}
}

func bodyTemplate(kind Kind) *template.Template {
	switch kind {
	case KindPending:
		return pendingTemplate
	case KindPublished:
		return publishedTemplate
	case KindDraft:
		return draftTemplate
	case KindScheduled:
		return scheduledTemplate
	case KindUpdated:
		return updatedTemplate
	case KindTrashed:
		return trashedTemplate
	}
	return nil
}

var subjectVerbs = map[Kind]string{
	KindPending:   "New post pending review",
	KindPublished: "Post published",
	KindDraft:     "Post saved as draft",
	KindScheduled: "Post scheduled",
	KindUpdated:   "Post updated",
	KindTrashed:   "Post trashed",
}

// sanitizeTitle collapses CR/LF sequences to single spaces so an
// entity-controlled title cannot inject mail headers, and substitutes the
// placeholder for empty titles.
func sanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r\n", " ")
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return untitledPlaceholder
	}
	return title
}

// Subject builds the mail subject for a notification kind.
func Subject(kind Kind, site Site, entity Entity) string {
	return fmt.Sprintf("[%s] %s: %s", site.Name, subjectVerbs[kind], sanitizeTitle(entity.Title))
}

// Compose renders the subject and HTML body for one notification. It is
// pure: no I/O and no side effects.
func Compose(kind Kind, site Site, entity Entity, authorName string) (Message, error) {
	t := bodyTemplate(kind)
	if t == nil {
		return Message{}, fmt.Errorf("no body template for notification kind %q", kind)
	}

	p := bodyParams{
		SiteName:  site.Name,
		SiteURL:   site.URL,
		Title:     sanitizeTitle(entity.Title),
		TypeLabel: entity.Type,
		Author:    authorName,
		Permalink: entity.Permalink,
		EditLink:  entity.EditLink,
	}
	if kind == KindScheduled {
		p.ScheduledFor = entity.PublishTime.Format("January 2, 2006 3:04 pm")
	}
	if kind == KindTrashed {
		p.TrashLink = strings.TrimRight(site.URL, "/") + "/admin/trash?type=" + url.QueryEscape(entity.Type)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, p); err != nil {
		return Message{}, fmt.Errorf("rendering %s notification body: %w", kind, err)
	}

	var doc bytes.Buffer
	doc.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body>`)
	doc.Write(body.Bytes())
	doc.WriteString(`<hr><p style="font-size: 12px; color: #666;">`)
	doc.WriteString(footerDisclaimer)
	doc.WriteString(`</p></body></html>`)

	return Message{Subject: Subject(kind, site, entity), HTMLBody: doc.String()}, nil
}
