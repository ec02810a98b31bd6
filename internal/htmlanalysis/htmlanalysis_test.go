package htmlanalysis

import (
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<a href="/next?x=1">next</a>
<a href="#frag">skip</a>
<a href="javascript:void(0)">skip</a>
<form action="/submit" method="post">
  <input name="user" value="bob">
  <input name="pass">
</form>
</body></html>`

func TestExtractAnchorsAndForms(t *testing.T) {
	reqs := Extract("http://t/page", []byte(page), false)

	var sawAnchor, sawForm bool
	for _, r := range reqs {
		if r.Method() == types.GET && r.URL() == "http://t/next" {
			sawAnchor = true
			require.Equal(t, []string{"1"}, r.Params()[types.GET]["x"])
		}
		if r.Method() == types.POST && r.URL() == "http://t/submit" {
			sawForm = true
			require.Equal(t, []string{"bob"}, r.Params()[types.POST]["user"])
		}
	}
	require.True(t, sawAnchor, "expected anchor-derived request")
	require.True(t, sawForm, "expected form-derived request")
}

func TestExtractSkipsFragmentAndJavascriptHrefs(t *testing.T) {
	reqs := Extract("http://t/page", []byte(page), false)
	for _, r := range reqs {
		require.NotContains(t, r.URL(), "javascript:")
		require.NotContains(t, r.URL(), "#frag")
	}
}
