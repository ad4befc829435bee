package argocd

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/devsecops-monitor/monitor/internal/model"
)

// appItem is the wire shape of one application in the list response.
// Only the fields the dashboard and report consume are decoded.
type appItem struct {
	Metadata *struct {
		Name string `json:"name"`
		UID  string `json:"uid"`
	} `json:"metadata"`
	Spec struct {
		Project string `json:"project"`
		Source  struct {
			RepoURL        string `json:"repoURL"`
			TargetRevision string `json:"targetRevision"`
			Path           string `json:"path"`
		} `json:"source"`
		Destination struct {
			Server    string `json:"server"`
			Namespace string `json:"namespace"`
		} `json:"destination"`
	} `json:"spec"`
	Status struct {
		Sync struct {
			Status   string `json:"status"`
			Revision string `json:"revision"`
		} `json:"sync"`
		Health struct {
			Status string `json:"status"`
		} `json:"health"`
		ReconciledAt   string `json:"reconciledAt"`
		OperationState struct {
			Phase   string `json:"phase"`
			Message string `json:"message"`
		} `json:"operationState"`
		History []struct {
			ID         int64  `json:"id"`
			Revision   string `json:"revision"`
			DeployedAt string `json:"deployedAt"`
		} `json:"history"`
	} `json:"status"`
}

// Normalize validates a raw applications response and reshapes it into a
// list of Applications sorted by name. Items without a metadata field are
// malformed and dropped rather than failing the whole fetch.
func Normalize(body []byte, fetchErr error) model.Outcome[[]model.Application] {
	if fetchErr != nil {
		return model.Failed[[]model.Application](fetchErr.Error())
	}

	var resp struct {
		Items *[]appItem `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Items == nil {
		return model.Failed[[]model.Application]("invalid format")
	}

	apps := make([]model.Application, 0, len(*resp.Items))
	for _, item := range *resp.Items {
		if item.Metadata == nil {
			continue
		}
		apps = append(apps, convert(item))
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Name < apps[j].Name
	})

	return model.Ok(apps)
}

func convert(item appItem) model.Application {
	app := model.Application{
		Name:                 item.Metadata.Name,
		UID:                  item.Metadata.UID,
		Project:              item.Spec.Project,
		SyncStatus:           item.Status.Sync.Status,
		HealthStatus:         item.Status.Health.Status,
		SourceRepoURL:        item.Spec.Source.RepoURL,
		SourceTargetRevision: item.Spec.Source.TargetRevision,
		SourceRevision:       item.Status.Sync.Revision,
		SourcePath:           item.Spec.Source.Path,
		DestinationServer:    item.Spec.Destination.Server,
		DestinationNamespace: item.Spec.Destination.Namespace,
		LastSyncPhase:        item.Status.OperationState.Phase,
		LastSyncMessage:      item.Status.OperationState.Message,
		ReconciledAt:         parseTime(item.Status.ReconciledAt),
	}

	for _, h := range item.Status.History {
		app.History = append(app.History, model.DeploymentRevision{
			ID:         h.ID,
			Revision:   h.Revision,
			DeployedAt: parseTime(h.DeployedAt),
		})
	}
	// Newest deployment first.
	sort.SliceStable(app.History, func(i, j int) bool {
		return app.History[i].ID > app.History[j].ID
	})

	return app
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
