// Package htmlanalysis is the HTML-analysis collaborator (§6): it parses a
// response body into the anchor and form descriptors the crawler needs and
// turns them into candidate requests. The core treats this package purely
// as something that returns a set of requests; it never inspects markup
// itself.
package htmlanalysis

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
)

// formInput is one discovered <input>/<textarea>/<select> field.
type formInput struct {
	name  string
	value string
}

// form is one discovered <form>, resolved against the page's base URL.
type form struct {
	action string
	method types.HTTPMethod
	inputs []formInput
}

// skippedScheme reports whether href uses a scheme that can never become a
// fuzzable HTTP(S) request.
func skippedScheme(href string) bool {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return true
	case strings.HasPrefix(href, "#"):
		return true
	case strings.HasPrefix(href, "javascript:"):
		return true
	case strings.HasPrefix(href, "mailto:"):
		return true
	case strings.HasPrefix(href, "tel:"):
		return true
	case strings.HasPrefix(href, "data:"):
		return true
	}
	return false
}

// resolve turns href into an absolute URL against base, or "" if href is
// unusable.
func resolve(base *url.URL, href string) string {
	if skippedScheme(href) {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// parseForm extracts one <form> node's action/method/inputs.
func parseForm(n *html.Node, base *url.URL) form {
	f := form{method: types.GET}

	if action, ok := attr(n, "action"); ok {
		if resolved := resolve(base, action); resolved != "" {
			f.action = resolved
		}
	}
	if f.action == "" {
		f.action = base.String()
	}
	if m, ok := attr(n, "method"); ok && strings.EqualFold(m, "post") {
		f.method = types.POST
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "input", "textarea", "select":
				name, hasName := attr(n, "name")
				if hasName && name != "" {
					value, _ := attr(n, "value")
					f.inputs = append(f.inputs, formInput{name: name, value: value})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return f
}

// Extract parses an HTML document and returns the set of candidate requests
// reachable from it: one per anchor/script/link/media href, and one per
// <form>. Duplicate hrefs are not merged; each yields its own request. Anchors carry no parameters beyond whatever query string
// they already embed; forms carry their inputs as GET or POST params
// according to the form's method attribute.
func Extract(baseURL string, body []byte, uniqueAnchors bool) []*request.Request {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	var forms []form

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href, ok := attr(n, "href"); ok {
					if resolved := resolve(base, href); resolved != "" {
						links = append(links, resolved)
					}
				}
			case "script", "img", "iframe", "embed", "video", "audio", "source":
				if src, ok := attr(n, "src"); ok {
					if resolved := resolve(base, src); resolved != "" {
						links = append(links, resolved)
					}
				}
			case "form":
				forms = append(forms, parseForm(n, base))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out := make([]*request.Request, 0, len(links)+len(forms))

	for _, link := range links {
		r, err := requestFromLink(link, uniqueAnchors)
		if err == nil {
			out = append(out, r)
		}
	}
	for _, f := range forms {
		r, err := requestFromForm(f, uniqueAnchors)
		if err == nil {
			out = append(out, r)
		}
	}

	return out
}

// requestFromLink turns a bare anchor/script/link href into a GET request,
// lifting any query string it already carries into the GET param multimap.
func requestFromLink(link string, uniqueAnchors bool) (*request.Request, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	params := request.Params{types.GET: {}, types.POST: {}}
	for k, v := range u.Query() {
		params[types.GET][k] = append([]string(nil), v...)
	}
	u.RawQuery = ""
	return request.New(types.GET, u.String(), params, nil, uniqueAnchors)
}

// requestFromForm builds a request from a parsed form's action/method and
// its discovered inputs.
func requestFromForm(f form, uniqueAnchors bool) (*request.Request, error) {
	params := request.Params{types.GET: {}, types.POST: {}}
	for _, in := range f.inputs {
		params[f.method][in.name] = append(params[f.method][in.name], in.value)
	}
	return request.New(f.method, f.action, params, nil, uniqueAnchors)
}
