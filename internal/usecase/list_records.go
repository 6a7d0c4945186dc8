package usecase

import (
	"context"
	"sort"

	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// ListRecords lists the deployment registry
type ListRecords struct {
	registry DeploymentRegistry
}

// NewListRecords creates a new list use case
func NewListRecords(registry DeploymentRegistry) *ListRecords {
	return &ListRecords{registry: registry}
}

// ListRecordsParams filters the listing. A zero network lists every network.
type ListRecordsParams struct {
	Network domain.NetworkID
}

// RecordListResult groups records by network
type RecordListResult struct {
	Records   []*models.DeploymentRecord                      `json:"records"`
	ByNetwork map[domain.NetworkID][]*models.DeploymentRecord `json:"-"`
}

// Run lists records ordered by network then recording time
func (l *ListRecords) Run(ctx context.Context, params ListRecordsParams) (*RecordListResult, error) {
	records, err := l.registry.List(ctx, params.Network)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Network != records[j].Network {
			return records[i].Network < records[j].Network
		}
		if !records[i].RecordedAt.Equal(records[j].RecordedAt) {
			return records[i].RecordedAt.Before(records[j].RecordedAt)
		}
		return records[i].Name < records[j].Name
	})

	result := &RecordListResult{
		Records:   records,
		ByNetwork: make(map[domain.NetworkID][]*models.DeploymentRecord),
	}
	for _, r := range records {
		result.ByNetwork[r.Network] = append(result.ByNetwork[r.Network], r)
	}
	return result, nil
}
