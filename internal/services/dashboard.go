package services

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/crediflow/los-backend/internal/data/repos"
	"github.com/crediflow/los-backend/internal/domain"
	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// DashboardFlow is one launchable flow tile on the applicant dashboard.
type DashboardFlow struct {
	FlowID      string `json:"flowId"`
	Version     int    `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// DashboardService lists the ACTIVE flows a given scope may launch.
type DashboardService interface {
	ListFlows(ctx context.Context, scope domain.Scope) ([]DashboardFlow, error)
}

type dashboardService struct {
	log        *logger.Logger
	configRepo repos.ConfigDocumentRepo
}

func NewDashboardService(baseLog *logger.Logger, configRepo repos.ConfigDocumentRepo) DashboardService {
	return &dashboardService{
		log:        baseLog.With("service", "DashboardService"),
		configRepo: configRepo,
	}
}

// ListFlows returns every ACTIVE flow visible to the scope, one entry per
// flow id. When a flow is active at several scope levels the most
// specific one wins, matching what runtime resolution would serve.
func (s *dashboardService) ListFlows(ctx context.Context, scope domain.Scope) ([]DashboardFlow, error) {
	docs, err := s.configRepo.FindActiveMatchingScope(ctx, nil, domain.KindFlow, scope)
	if err != nil {
		return nil, err
	}

	best := make(map[string]*domain.ConfigDocument, len(docs))
	for _, doc := range docs {
		current, ok := best[doc.LogicalKey]
		if !ok {
			best[doc.LogicalKey] = doc
			continue
		}
		ds, cs := doc.Scope().Specificity(), current.Scope().Specificity()
		if ds > cs || (ds == cs && doc.ID.String() < current.ID.String()) {
			best[doc.LogicalKey] = doc
		}
	}

	flows := make([]DashboardFlow, 0, len(best))
	for flowID, doc := range best {
		flows = append(flows, dashboardFlowFrom(flowID, doc))
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].FlowID < flows[j].FlowID })
	return flows, nil
}

func dashboardFlowFrom(flowID string, doc *domain.ConfigDocument) DashboardFlow {
	flow := DashboardFlow{
		FlowID:      flowID,
		Version:     doc.Version,
		Title:       flowID,
		Description: "",
		Icon:        "default",
	}
	var body map[string]any
	if len(doc.Body) > 0 {
		if err := json.Unmarshal(doc.Body, &body); err != nil {
			return flow
		}
	}
	meta, _ := body["dashboardMeta"].(map[string]any)
	if title, ok := meta["title"].(string); ok && title != "" {
		flow.Title = title
	}
	if description, ok := meta["description"].(string); ok {
		flow.Description = description
	}
	if icon, ok := meta["icon"].(string); ok && icon != "" {
		flow.Icon = icon
	}
	return flow
}
