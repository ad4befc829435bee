package jenkins

import (
	"encoding/json"
	"sort"

	"github.com/devsecops-monitor/monitor/internal/model"
)

// rawBuild is the wire shape of one build in the job details response.
type rawBuild struct {
	Number    int    `json:"number"`
	URL       string `json:"url"`
	Timestamp *int64 `json:"timestamp"`
	Duration  *int64 `json:"duration"`
	Result    string `json:"result"`
	Building  bool   `json:"building"`
}

// Normalize validates a raw job-details response and reshapes it into
// BuildData with builds sorted descending by number. A fetch error or a body
// without a builds list becomes a Failed outcome; nothing is raised past
// this boundary.
func Normalize(jobName string, body []byte, fetchErr error) model.Outcome[*model.BuildData] {
	if fetchErr != nil {
		return model.Failed[*model.BuildData](fetchErr.Error())
	}

	var resp struct {
		Builds *[]rawBuild `json:"builds"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Builds == nil {
		return model.Failed[*model.BuildData]("invalid format")
	}

	builds := make([]model.Build, 0, len(*resp.Builds))
	for _, rb := range *resp.Builds {
		b := model.Build{
			Number:      rb.Number,
			Result:      rb.Result,
			Building:    rb.Building,
			StartTimeMs: rb.Timestamp,
			DurationMs:  rb.Duration,
			URL:         rb.URL,
		}
		// End time is derivable only once the build has finished.
		if rb.Timestamp != nil && rb.Duration != nil && !rb.Building {
			end := *rb.Timestamp + *rb.Duration
			b.EndTimeMs = &end
		}
		builds = append(builds, b)
	}

	// Numbers are expected unique; a stable sort preserves fetch order for
	// the anomalous case of a duplicate.
	sort.SliceStable(builds, func(i, j int) bool {
		return builds[i].Number > builds[j].Number
	})

	return model.Ok(&model.BuildData{JobName: jobName, Builds: builds})
}
