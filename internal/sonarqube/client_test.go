package sonarqube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchMeasures(t *testing.T) {
	var gotUser, gotComponent, gotKeys string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		gotComponent = r.URL.Query().Get("component")
		gotKeys = r.URL.Query().Get("metricKeys")
		w.Write([]byte(`{"component":{"key":"svc","measures":[]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Token: "sq-token"})
	_, err := c.FetchMeasures(context.Background(), "svc", []string{"bugs", "coverage"})
	if err != nil {
		t.Fatalf("FetchMeasures() error: %v", err)
	}
	if gotUser != "sq-token" {
		t.Errorf("basic auth user = %q, want the token", gotUser)
	}
	if gotComponent != "svc" {
		t.Errorf("component = %q, want %q", gotComponent, "svc")
	}
	if gotKeys != "bugs,coverage" {
		t.Errorf("metricKeys = %q, want %q", gotKeys, "bugs,coverage")
	}
}

func TestFetchMeasuresDefaultKeys(t *testing.T) {
	var gotKeys string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeys = r.URL.Query().Get("metricKeys")
		w.Write([]byte(`{"component":{"key":"svc"}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.FetchMeasures(context.Background(), "svc", nil); err != nil {
		t.Fatalf("FetchMeasures() error: %v", err)
	}
	if gotKeys != strings.Join(DefaultMetricKeys, ",") {
		t.Errorf("metricKeys = %q, want the default set", gotKeys)
	}
}

func TestFetchMeasuresServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"msg":"Component key 'nope' not found"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.FetchMeasures(context.Background(), "nope", nil)
	if err == nil {
		t.Fatal("FetchMeasures() succeeded, want error")
	}
	if err.Error() != "Component key 'nope' not found" {
		t.Errorf("error = %q, want the structured message", err)
	}
}

func TestListProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects/search" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"components":[{"key":"a","name":"Service A"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error: %v", err)
	}
	if len(projects) != 1 || projects[0].Key != "a" {
		t.Errorf("projects = %+v, want one project a", projects)
	}
}
