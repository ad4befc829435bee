package jenkins

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchBuilds(t *testing.T) {
	var gotAuth, gotPath, gotTree string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		gotAuth = user + ":" + pass
		gotPath = r.URL.Path
		gotTree = r.URL.Query().Get("tree")
		w.Write([]byte(`{"builds":[{"number":1,"result":"SUCCESS"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/", Username: "svc", APIToken: "tok"})
	body, err := c.FetchBuilds(context.Background(), "deploy pipeline")
	if err != nil {
		t.Fatalf("FetchBuilds() error: %v", err)
	}
	if !strings.Contains(string(body), `"number":1`) {
		t.Errorf("body = %s, want builds payload", body)
	}
	if gotAuth != "svc:tok" {
		t.Errorf("basic auth = %q, want %q", gotAuth, "svc:tok")
	}
	if gotPath != "/job/deploy pipeline/api/json" {
		t.Errorf("path = %q, want the job path", gotPath)
	}
	if gotTree != "builds[number,url,timestamp,duration,result,building]" {
		t.Errorf("tree = %q, want the builds selector", gotTree)
	}
}

func TestFetchBuildsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.FetchBuilds(context.Background(), "missing")
	if err == nil {
		t.Fatal("FetchBuilds() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want it to mention the status", err)
	}
}

func TestListJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"jobs":[{"name":"a","url":"http://j/job/a/"},{"name":"b","url":"http://j/job/b/"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	jobs, err := c.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("ListJobs() error: %v", err)
	}
	if len(jobs) != 2 || jobs[0].Name != "a" {
		t.Errorf("jobs = %+v, want a and b", jobs)
	}
}
