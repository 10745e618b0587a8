package richtext

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// RenderMarkdown renders doc as Markdown by converting its HTML rendering.
func RenderMarkdown(doc Document) (string, error) {
	fragment, err := RenderHTML(doc)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting html to markdown: %w", err)
	}
	return md, nil
}
