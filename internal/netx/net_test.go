package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutToSignedURL(t *testing.T) {
	file := []byte("\x89PNG fake")

	t.Run("success", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod, gotQuery string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotQuery = r.URL.RawQuery
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := PutToSignedURL(context.Background(), ts.Client(), ts.URL+"/users/u1/logo.png?X-Amz-Signature=abc", "image/png", file)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "image/png", gotCT)
		assert.Equal(t, "X-Amz-Signature=abc", gotQuery)
		assert.Equal(t, file, gotBody)
	})

	t.Run("non-2xx", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("SignatureDoesNotMatch"))
		}))
		defer ts.Close()

		err := PutToSignedURL(context.Background(), nil, ts.URL, "image/png", file)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "upload failed: 403"))
		assert.True(t, strings.Contains(err.Error(), "SignatureDoesNotMatch"))
	})

	t.Run("bad url", func(t *testing.T) {
		err := PutToSignedURL(context.Background(), nil, "http://[::1]:namedport", "image/png", file)
		require.Error(t, err)
	})
}
