package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluxfuzzer/fluxfuzzer/internal/request"
	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestClientDoStampsReqIDAndCookies(t *testing.T) {
	var gotReqID, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("REQ-ID")
		c, _ := r.Cookie("session")
		if c != nil {
			gotCookie = c.Value
		}
		w.Header().Set("I-1", "3")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	client := NewClient(DefaultOptions(1), map[string]string{"session": "abc123"})

	r, err := request.New(types.GET, srv.URL, nil, nil, false)
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), r, "42")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "42", gotReqID)
	require.Equal(t, "abc123", gotCookie)
	require.Equal(t, "3", resp.Headers.Get("I-1"))
}

func TestClientDoPostSendsFormBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotBody = r.FormValue("q")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(DefaultOptions(1), nil)

	params := request.Params{
		types.POST: {"q": {"hello"}},
	}
	r, err := request.New(types.POST, srv.URL, params, nil, false)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), r, "1")
	require.NoError(t, err)
	require.Equal(t, "hello", gotBody)
}

func TestClientRespectsRateLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(DefaultOptions(1), nil)
	client.SetLimiter(rate.NewLimiter(rate.Limit(5), 1))

	r, err := request.New(types.GET, srv.URL, nil, nil, false)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Do(context.Background(), r, "1")
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}

func TestNewRateLimiterZeroIsUnlimited(t *testing.T) {
	limiter := NewRateLimiter(0)
	require.Equal(t, rate.Inf, limiter.Limit())
}
