package thumbnail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseDocument_OpenGraphImage(t *testing.T) {
	doc := parse(t, `<html><head><meta property="og:image" content="https://cdn.example.com/pic.jpg"></head></html>`)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", ParseDocument(doc))
}

func TestParseDocument_TwitterImageFallback(t *testing.T) {
	doc := parse(t, `<html><head><meta name="twitter:image" content="https://cdn.example.com/card.png"></head></html>`)
	assert.Equal(t, "https://cdn.example.com/card.png", ParseDocument(doc))
}

func TestParseDocument_NoImage(t *testing.T) {
	doc := parse(t, `<html><head><title>plain page</title></head></html>`)
	assert.Equal(t, "", ParseDocument(doc))

	// A blank content attribute counts as no image.
	doc = parse(t, `<html><head><meta property="og:image" content="  "></head></html>`)
	assert.Equal(t, "", ParseDocument(doc))
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:image" content="/static/pic.jpg"></head></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(2*time.Second, testLogger())
	img, err := f.Fetch(context.Background(), srv.URL+"/article")
	require.NoError(t, err)
	// Relative references resolve against the page URL.
	assert.Equal(t, srv.URL+"/static/pic.jpg", img)
}

func TestHTTPFetcher_NoImageIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>nothing here</title></head></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(2*time.Second, testLogger())
	img, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "", img)
}

func TestHTTPFetcher_Non200Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(2*time.Second, testLogger())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
