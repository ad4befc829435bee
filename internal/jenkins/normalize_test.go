package jenkins

import (
	"errors"
	"testing"
)

func TestNormalizeSortsDescending(t *testing.T) {
	body := []byte(`{"builds":[
		{"number":1,"result":"SUCCESS","timestamp":1000,"duration":500,"building":false},
		{"number":3,"result":"FAILURE","timestamp":3000,"duration":700,"building":false},
		{"number":2,"result":null,"timestamp":2000,"duration":0,"building":true}
	]}`)

	out := Normalize("deploy-pipeline", body, nil)
	if !out.OK() {
		t.Fatalf("Normalize failed: %s", out.Reason())
	}
	data := out.Value()
	if data.JobName != "deploy-pipeline" {
		t.Errorf("JobName = %q, want %q", data.JobName, "deploy-pipeline")
	}
	if len(data.Builds) != 3 {
		t.Fatalf("len(Builds) = %d, want 3", len(data.Builds))
	}
	for i, want := range []int{3, 2, 1} {
		if data.Builds[i].Number != want {
			t.Errorf("Builds[%d].Number = %d, want %d", i, data.Builds[i].Number, want)
		}
	}
}

func TestNormalizeEndTime(t *testing.T) {
	body := []byte(`{"builds":[
		{"number":10,"result":"SUCCESS","timestamp":1000,"duration":500,"building":false},
		{"number":11,"result":null,"timestamp":2000,"duration":120,"building":true},
		{"number":12,"result":"SUCCESS","duration":500,"building":false}
	]}`)

	out := Normalize("job", body, nil)
	if !out.OK() {
		t.Fatalf("Normalize failed: %s", out.Reason())
	}
	builds := out.Value().Builds

	// Sorted descending: 12, 11, 10.
	if builds[2].EndTimeMs == nil || *builds[2].EndTimeMs != 1500 {
		t.Errorf("finished build EndTimeMs = %v, want 1500", builds[2].EndTimeMs)
	}
	if builds[1].EndTimeMs != nil {
		t.Errorf("running build EndTimeMs = %v, want nil", builds[1].EndTimeMs)
	}
	if builds[0].EndTimeMs != nil {
		t.Errorf("build without timestamp EndTimeMs = %v, want nil", builds[0].EndTimeMs)
	}
}

func TestNormalizeEmptyBuilds(t *testing.T) {
	out := Normalize("job", []byte(`{"builds":[]}`), nil)
	if !out.OK() {
		t.Fatalf("Normalize failed: %s", out.Reason())
	}
	if got := len(out.Value().Builds); got != 0 {
		t.Errorf("len(Builds) = %d, want 0", got)
	}
}

func TestNormalizeInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing builds key", `{"jobs":[]}`},
		{"builds not a list", `{"builds":{"a":1}}`},
		{"not json", `<html>登录</html>`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize("job", []byte(tt.body), nil)
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
	out := Normalize("job", nil, errors.New("connection refused"))
	if out.OK() {
		t.Fatal("Normalize succeeded, want failure")
	}
	if out.Reason() != "connection refused" {
		t.Errorf("Reason() = %q, want %q", out.Reason(), "connection refused")
	}
}
