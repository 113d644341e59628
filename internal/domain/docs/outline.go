package docs

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const languageClassPrefix = "language-"

// Heading is a section heading found in a page body.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// CodeSample is a <pre><code> block found in a page body.
type CodeSample struct {
	Language string
}

// Outline summarises the structure of a page body.
type Outline struct {
	Headings    []Heading
	CodeSamples []CodeSample
}

// Languages returns the distinct code sample languages in order of appearance.
func (o Outline) Languages() []string {
	seen := make(map[string]struct{}, len(o.CodeSamples))
	languages := make([]string, 0, len(o.CodeSamples))
	for _, sample := range o.CodeSamples {
		if _, ok := seen[sample.Language]; ok {
			continue
		}
		seen[sample.Language] = struct{}{}
		languages = append(languages, sample.Language)
	}
	return languages
}

// InspectBody parses a page body and extracts its headings and code samples.
// Code samples must carry a language-* class so the renderer can highlight them.
func InspectBody(body string) (Outline, error) {
	if strings.TrimSpace(body) == "" {
		return Outline{}, eris.New("page body is empty")
	}

	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(body), context)
	if err != nil {
		return Outline{}, eris.Wrap(err, "parsing page body")
	}

	var outline Outline
	for _, node := range nodes {
		if err := walkOutline(node, &outline); err != nil {
			return Outline{}, err
		}
	}

	return outline, nil
}

func walkOutline(node *html.Node, outline *Outline) error {
	if node.Type == html.ElementNode {
		switch node.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			text := strings.TrimSpace(textContent(node))
			if text == "" {
				return eris.Errorf("%s heading has no text", node.Data)
			}
			outline.Headings = append(outline.Headings, Heading{
				ID:    attribute(node, "id"),
				Text:  text,
				Level: int(node.Data[1] - '0'),
			})
			return nil
		case atom.Pre:
			code := firstChildElement(node, atom.Code)
			if code == nil {
				return nil
			}
			language := codeLanguage(code)
			if language == "" {
				return eris.New("code sample is missing a language-* class")
			}
			outline.CodeSamples = append(outline.CodeSamples, CodeSample{Language: language})
			return nil
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := walkOutline(child, outline); err != nil {
			return err
		}
	}
	return nil
}

func codeLanguage(node *html.Node) string {
	for _, class := range strings.Fields(attribute(node, "class")) {
		if strings.HasPrefix(class, languageClassPrefix) {
			return strings.TrimPrefix(class, languageClassPrefix)
		}
	}
	return ""
}

func firstChildElement(node *html.Node, a atom.Atom) *html.Node {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == a {
			return child
		}
	}
	return nil
}

func attribute(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func textContent(node *html.Node) string {
	if node.Type == html.TextNode {
		return node.Data
	}

	var builder strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		builder.WriteString(textContent(child))
	}
	return builder.String()
}
