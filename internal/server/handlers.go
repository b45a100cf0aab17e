package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pablasso/goalplan/internal/ai"
	"github.com/pablasso/goalplan/internal/plan"
	"github.com/pablasso/goalplan/internal/store"
)

const maxGoalLength = 2000

type generateRequest struct {
	Goal string `json:"goal"`
}

type taskPlan struct {
	Tasks []plan.Task `json:"tasks"`
}

type generateResponse struct {
	Goal     string   `json:"goal"`
	TaskPlan taskPlan `json:"taskPlan"`
}

type createPlanRequest struct {
	Goal  string      `json:"goal"`
	Tasks []plan.Task `json:"tasks"`
}

// planDetail is a saved plan together with its derived views.
type planDetail struct {
	plan.Plan
	OrderedTasks []plan.Task          `json:"orderedTasks"`
	Completion   int                  `json:"completion"`
	Summary      plan.Summary         `json:"summary"`
	Timeline     []plan.TimelineEntry `json:"timeline"`
	Cycle        []string             `json:"cycle,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": string(s.provider),
	})
}

func (s *Server) handleGeneratePlan(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Goal text is required"})
		return
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Goal text is required"})
		return
	}
	if len(goal) > maxGoalLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Goal text is too long"})
		return
	}

	tasks, err := s.gen.Generate(c.Request.Context(), goal)
	if err != nil {
		var parseErr *ai.ParseError
		switch {
		case errors.As(err, &parseErr):
			s.logger.Error("failed to parse generated plan", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       "Failed to parse the generated task plan",
				"rawResponse": parseErr.Raw,
			})
		case errors.Is(err, ai.ErrEmptyGoal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Goal text is required"})
		default:
			s.logger.Error("failed to generate plan", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate task plan"})
		}
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		Goal:     goal,
		TaskPlan: taskPlan{Tasks: plan.Normalize(tasks)},
	})
}

func (s *Server) handleListPlans(c *gin.Context) {
	plans, err := s.store.LoadAll(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to load plans", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan: " + err.Error()})
		return
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Goal text is required"})
		return
	}

	s.saveMu.Lock()
	saved, err := s.store.Save(c.Request.Context(), goal, req.Tasks)
	s.saveMu.Unlock()
	if err != nil {
		s.logger.Error("failed to save plan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save plan"})
		return
	}

	s.logger.Info("plan saved", "plan_id", saved.ID, "tasks", len(saved.Tasks))
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleGetPlan(c *gin.Context) {
	p, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to load plan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plan"})
		return
	}

	c.JSON(http.StatusOK, planDetail{
		Plan:         *p,
		OrderedTasks: plan.SortForDisplay(p.Tasks),
		Completion:   p.Completion(),
		Summary:      plan.Summarize(p.Tasks),
		Timeline:     plan.Timeline(p.Tasks),
		Cycle:        plan.DepCycle(p.Tasks),
	})
}
