package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/case-assistant/internal/aggregate"
	"github.com/support-kit/case-assistant/internal/api/dto"
	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/service"
	apperrors "github.com/support-kit/case-assistant/pkg/util"
)

// Workload grouping dimensions.
const (
	GroupByAssignee = "assignee"
	GroupByPriority = "priority"
	GroupByQueue    = "queue"
)

// WorkloadHandler serves aggregation endpoints used for staffing decisions.
type WorkloadHandler struct {
	service *service.CaseSearchService
}

// NewWorkloadHandler constructs handler.
func NewWorkloadHandler(searchService *service.CaseSearchService) *WorkloadHandler {
	return &WorkloadHandler{service: searchService}
}

// Workload POST /cases/workload.
func (h *WorkloadHandler) Workload(c *fiber.Ctx) error {
	var req dto.WorkloadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	groupBy := strings.ToLower(strings.TrimSpace(req.GroupBy))
	if groupBy == "" {
		groupBy = GroupByAssignee
	}
	switch groupBy {
	case GroupByAssignee, GroupByPriority, GroupByQueue:
	default:
		return apperrors.NewValidationError("group_by must be assignee, priority, or queue", nil)
	}

	result := h.service.SearchWithMetadata(c.UserContext(), filtersFromPayload(req.SearchFiltersPayload))

	resp := dto.WorkloadResponse{GroupBy: groupBy, TotalCases: len(result.Cases)}
	switch groupBy {
	case GroupByAssignee:
		resp.Assignees = assigneeWorkloads(aggregate.ByAssignee(result.Cases))
	case GroupByPriority:
		resp.Priorities = priorityWorkloads(aggregate.ByPriority(result.Cases))
	case GroupByQueue:
		resp.Queues = queueWorkloads(aggregate.ByQueue(result.Cases))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func assigneeWorkloads(groups []domain.AssigneeAggregation) []dto.AssigneeWorkloadResponse {
	items := make([]dto.AssigneeWorkloadResponse, 0, len(groups))
	for i := range groups {
		item := dto.AssigneeWorkloadResponse{
			Assignee:       groups[i].Assignee,
			Count:          groups[i].Count,
			AverageAgeDays: groups[i].AverageAgeDays,
			Cases:          caseResponses(groups[i].Cases),
		}
		if groups[i].OldestCase != nil {
			oldest := caseResponse(*groups[i].OldestCase)
			item.OldestCase = &oldest
		}
		items = append(items, item)
	}
	return items
}

func priorityWorkloads(groups []domain.PriorityAggregation) []dto.PriorityWorkloadResponse {
	items := make([]dto.PriorityWorkloadResponse, 0, len(groups))
	for i := range groups {
		items = append(items, dto.PriorityWorkloadResponse{
			Priority: groups[i].Priority,
			Count:    groups[i].Count,
			Cases:    caseResponses(groups[i].Cases),
		})
	}
	return items
}

func queueWorkloads(groups []domain.QueueAggregation) []dto.QueueWorkloadResponse {
	items := make([]dto.QueueWorkloadResponse, 0, len(groups))
	for i := range groups {
		items = append(items, dto.QueueWorkloadResponse{
			Queue: groups[i].Queue,
			Count: groups[i].Count,
			Cases: caseResponses(groups[i].Cases),
		})
	}
	return items
}
