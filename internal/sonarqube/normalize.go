package sonarqube

import (
	"encoding/json"

	"github.com/devsecops-monitor/monitor/internal/model"
)

// Normalize validates a raw measures/component response and folds the
// measures list into a flat metrics map. Measures without a value are
// dropped. The project key falls back to the originally requested key when
// the response omits it.
func Normalize(requestedKey string, body []byte, fetchErr error) model.Outcome[*model.QualityData] {
	if fetchErr != nil {
		return model.Failed[*model.QualityData](fetchErr.Error())
	}

	var resp struct {
		Component *struct {
			Key      string `json:"key"`
			Measures []struct {
				Metric string  `json:"metric"`
				Value  *string `json:"value"`
			} `json:"measures"`
		} `json:"component"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Component == nil {
		return model.Failed[*model.QualityData]("invalid format")
	}

	metrics := make(map[string]string, len(resp.Component.Measures))
	for _, m := range resp.Component.Measures {
		if m.Metric == "" || m.Value == nil {
			continue
		}
		metrics[m.Metric] = *m.Value
	}

	key := resp.Component.Key
	if key == "" {
		key = requestedKey
	}

	return model.Ok(&model.QualityData{ProjectKey: key, Metrics: metrics})
}
