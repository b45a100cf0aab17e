package ai

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pablasso/goalplan/internal/plan"
)

// demoHorizonDays is the plan length when the goal names no timeline.
const demoHorizonDays = 14

type demoTask struct {
	title       string
	description string
	duration    string
	offsetDays  int
	deps        []string
}

var launchTemplate = []demoTask{
	{"Finalize product features", "Review and finalize all product features that will be included in the initial launch", "2 days", 2, nil},
	{"Complete product testing", "Perform thorough testing of all features and fix any critical bugs", "2 days", 4, []string{"1"}},
	{"Prepare marketing materials", "Create promotional content, social media posts, and press releases", "3 days", 7, []string{"1"}},
	{"Set up sales channels", "Ensure all distribution channels are ready for product launch", "3 days", 10, []string{"2"}},
	{"Launch product", "Official product launch across all planned channels", "1 day", 14, []string{"3", "4"}},
}

var websiteTemplate = []demoTask{
	{"Create website wireframes", "Design layout and user flow for all main pages", "2 days", 2, nil},
	{"Develop frontend components", "Create HTML, CSS, and JavaScript for all pages based on wireframes", "3 days", 5, []string{"1"}},
	{"Implement backend functionality", "Set up server, database, and API endpoints", "3 days", 8, []string{"2"}},
	{"Test and debug website", "Perform comprehensive testing on different devices and browsers", "2 days", 12, []string{"3"}},
	{"Deploy website to production", "Launch the website on production servers and configure domain", "1 day", 14, []string{"4"}},
}

var genericTemplate = []demoTask{
	{"Project planning", "Define project scope, objectives, and key milestones", "2 days", 2, nil},
	{"Resource allocation", "Assign team members and allocate necessary resources", "3 days", 5, []string{"1"}},
	{"Implementation phase", "Execute the core project work based on the plan", "3 days", 8, []string{"2"}},
	{"Quality assurance", "Review and test all deliverables to ensure quality", "4 days", 12, []string{"3"}},
	{"Project delivery", "Finalize all deliverables and present to stakeholders", "2 days", 14, []string{"4"}},
}

// DemoGenerator returns canned plans without calling any service. It is used
// when no API key is configured.
type DemoGenerator struct {
	now func() time.Time
}

// NewDemoGenerator returns a demo generator using the current date.
func NewDemoGenerator() *DemoGenerator {
	return &DemoGenerator{now: time.Now}
}

// NewDemoGeneratorAt returns a demo generator whose deadlines count from now().
func NewDemoGeneratorAt(now func() time.Time) *DemoGenerator {
	return &DemoGenerator{now: now}
}

// Generate picks a template from keywords in the goal and dates it from today.
func (g *DemoGenerator) Generate(ctx context.Context, goal string) ([]plan.Task, error) {
	goal, err := cleanGoal(goal)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(goal)
	tmpl := demoTemplate(lower)
	horizon := demoHorizon(lower)
	today := g.now()

	tasks := make([]plan.Task, len(tmpl))
	for i, dt := range tmpl {
		deps := []string{}
		deps = append(deps, dt.deps...)
		tasks[i] = plan.Task{
			ID:                strconv.Itoa(i + 1),
			Title:             dt.title,
			Description:       dt.description,
			EstimatedDuration: dt.duration,
			Deadline:          today.AddDate(0, 0, scaleOffset(dt.offsetDays, horizon)).Format(plan.DateLayout),
			Dependencies:      deps,
			Status:            plan.StatusNotStarted,
		}
	}
	return tasks, nil
}

func demoTemplate(goal string) []demoTask {
	switch {
	case strings.Contains(goal, "launch") && strings.Contains(goal, "product"):
		return launchTemplate
	case strings.Contains(goal, "website") || strings.Contains(goal, "web"):
		return websiteTemplate
	default:
		return genericTemplate
	}
}

// demoHorizon returns the plan length in days named by the goal.
func demoHorizon(goal string) int {
	switch {
	case strings.Contains(goal, "1 week") || strings.Contains(goal, "one week"):
		return 7
	case strings.Contains(goal, "2 weeks") || strings.Contains(goal, "two weeks"):
		return 14
	case strings.Contains(goal, "1 month") || strings.Contains(goal, "one month"):
		return 30
	default:
		return demoHorizonDays
	}
}

// scaleOffset stretches a two-week template offset to horizon days.
func scaleOffset(offset, horizon int) int {
	scaled := int(math.Round(float64(offset) * float64(horizon) / demoHorizonDays))
	if scaled < 1 {
		return 1
	}
	return scaled
}
