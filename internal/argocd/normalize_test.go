package argocd

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeSortsByName(t *testing.T) {
	body := []byte(`{"items":[
		{"metadata":{"name":"zeta","uid":"u3"}},
		{"metadata":{"name":"alpha","uid":"u1"}},
		{"metadata":{"name":"mid","uid":"u2"}}
	]}`)

	out := Normalize(body, nil)
	if !out.OK() {
		t.Fatalf("Normalize failed: %s", out.Reason())
	}
	apps := out.Value()
	if len(apps) != 3 {
		t.Fatalf("len(apps) = %d, want 3", len(apps))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if apps[i].Name != want {
			t.Errorf("apps[%d].Name = %q, want %q", i, apps[i].Name, want)
		}
	}
}

func TestNormalizeDropsItemsWithoutMetadata(t *testing.T) {
	body := []byte(`{"items":[
		{"metadata":{"name":"kept"}},
		{"spec":{"project":"default"}}
	]}`)

	out := Normalize(body, nil)
	if !out.OK() {
		t.Fatalf("Normalize failed: %s", out.Reason())
	}
	apps := out.Value()
	if len(apps) != 1 {
		t.Fatalf("len(apps) = %d, want 1", len(apps))
	}
	if apps[0].Name != "kept" {
		t.Errorf("apps[0].Name = %q, want %q", apps[0].Name, "kept")
	}
}

func TestNormalizeFields(t *testing.T) {
	body := []byte(`{"items":[{
		"metadata":{"name":"shop","uid":"abc-123"},
		"spec":{
			"project":"retail",
			"source":{"repoURL":"https://git.example.com/org/shop.git","targetRevision":"main","path":"deploy/prod"},
			"destination":{"server":"https://kubernetes.default.svc","namespace":"shop"}
		},
		"status":{
			"sync":{"status":"Synced","revision":"deadbeefcafe"},
			"health":{"status":"Healthy"},
			"reconciledAt":"2024-06-01T10:30:00Z",
			"operationState":{"phase":"Succeeded","message":"healthy"},
			"history":[
				{"id":1,"revision":"r1","deployedAt":"2024-05-01T00:00:00Z"},
				{"id":3,"revision":"r3","deployedAt":"2024-05-03T00:00:00Z"},
				{"id":2,"revision":"r2","deployedAt":"bogus"}
			]
		}
	}]}`)

	out := Normalize(body, nil)
	if !out.OK() {
		t.Fatalf("Normalize failed: %s", out.Reason())
	}
	app := out.Value()[0]

	if app.Project != "retail" {
		t.Errorf("Project = %q, want %q", app.Project, "retail")
	}
	if app.SyncStatus != "Synced" || app.HealthStatus != "Healthy" {
		t.Errorf("status = %q/%q, want Synced/Healthy", app.SyncStatus, app.HealthStatus)
	}
	if app.SourceRevision != "deadbeefcafe" {
		t.Errorf("SourceRevision = %q, want %q", app.SourceRevision, "deadbeefcafe")
	}
	if app.ReconciledAt == nil || !app.ReconciledAt.Equal(time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("ReconciledAt = %v, want 2024-06-01T10:30:00Z", app.ReconciledAt)
	}

	if len(app.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(app.History))
	}
	for i, want := range []int64{3, 2, 1} {
		if app.History[i].ID != want {
			t.Errorf("History[%d].ID = %d, want %d", i, app.History[i].ID, want)
		}
	}
	if app.History[1].DeployedAt != nil {
		t.Errorf("unparsable DeployedAt = %v, want nil", app.History[1].DeployedAt)
	}
}

func TestNormalizeInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing items", `{"applications":[]}`},
		{"null items", `{"items":null}`},
		{"not json", `boom`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize([]byte(tt.body), nil)
			if out.OK() {
				t.Fatal("Normalize succeeded, want failure")
			}
			if out.Reason() != "invalid format" {
				t.Errorf("Reason() = %q, want %q", out.Reason(), "invalid format")
			}
		})
	}
}

func TestNormalizeFetchError(t *testing.T) {
	out := Normalize(nil, errors.New("token expired"))
	if out.OK() {
		t.Fatal("Normalize succeeded, want failure")
	}
	if out.Reason() != "token expired" {
		t.Errorf("Reason() = %q, want %q", out.Reason(), "token expired")
	}
}
