package fixer

import (
	"fmt"
	"strings"
	"text/template"
)

const commentTemplate = `[Fixed Gfycat Link (HTML5 & GIF)](https://gfycat.com/{{.Slug}})

*****
[About](https://www.reddit.com/r/GfycatLinkFixerBot/wiki/index) |
[Banlist](https://www.reddit.com/r/GfycatLinkFixerBot/wiki/banlist) |
[Code](https://github.com/Gawdl3y/GfycatLinkFixerBot) |
[Subreddit](https://www.reddit.com/r/GfycatLinkFixerBot) |
Owner: /u/{{.Owner}}  
Problems? Please message the owner or post in the subreddit.`

var parsedTemplate = template.Must(template.New("comment").Parse(commentTemplate)) //nolint: gochecknoglobals

// Template renders the correction comment for a slug.
type Template struct {
	owner string
}

// NewTemplate returns a Template crediting owner in the footer.
func NewTemplate(owner string) Template {
	return Template{owner: owner}
}

// Render returns the comment body for slug.
func (t Template) Render(slug string) (string, error) {
	var b strings.Builder
	if err := parsedTemplate.Execute(&b, struct{ Slug, Owner string }{slug, t.owner}); err != nil {
		return "", fmt.Errorf("could not render comment: %w", err)
	}

	return b.String(), nil
}
