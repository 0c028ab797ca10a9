package github

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

type fieldValue struct {
	Value  string   `json:"value"`
	Color  string   `json:"color"`
	Number *float64 `json:"number"`
}

// field converts a field value to a workitem field. Values of a non-matching
// field type decode as an empty object and are treated as absent.
func (v *fieldValue) field() *workitem.Field {
	switch {
	case v == nil:
		return nil
	case v.Number != nil:
		return &workitem.Field{Value: strconv.FormatFloat(*v.Number, 'f', -1, 64)}
	case v.Value == "":
		return nil
	default:
		return &workitem.Field{Value: v.Value, Color: v.Color}
	}
}

type itemNode struct {
	Iteration  *fieldValue `json:"iteration"`
	Team       *fieldValue `json:"team"`
	Status     *fieldValue `json:"status"`
	QA         *fieldValue `json:"qa"`
	Complexity *fieldValue `json:"complexity"`
	Content    *struct {
		Assignees *struct {
			Nodes []struct {
				Login string `json:"login"`
			} `json:"nodes"`
		} `json:"assignees"`
	} `json:"content"`
}

func (n itemNode) item() workitem.Item {
	it := workitem.Item{
		Iteration:  n.Iteration.field(),
		Team:       n.Team.field(),
		Status:     n.Status.field(),
		QA:         n.QA.field(),
		Complexity: n.Complexity.field(),
	}

	if n.Content != nil && n.Content.Assignees != nil {
		for _, a := range n.Content.Assignees.Nodes {
			if a.Login != "" {
				it.Assignees = append(it.Assignees, workitem.Field{Value: a.Login})
			}
		}
	}

	return it
}

type pageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

type itemsData struct {
	Organization *struct {
		ProjectV2 *struct {
			Items struct {
				PageInfo pageInfo   `json:"pageInfo"`
				Nodes    []itemNode `json:"nodes"`
			} `json:"items"`
		} `json:"projectV2"`
	} `json:"organization"`
}

type iterationNode struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	Duration  int    `json:"duration"`
}

type optionNode struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type projectField struct {
	Configuration *struct {
		Iterations          []iterationNode `json:"iterations"`
		CompletedIterations []iterationNode `json:"completedIterations"`
	} `json:"configuration"`
	Options []optionNode `json:"options"`
}

type fieldData struct {
	Organization *struct {
		ProjectV2 *struct {
			Field *projectField `json:"field"`
		} `json:"projectV2"`
	} `json:"organization"`
}

func (d fieldData) field(name string) (*projectField, error) {
	if d.Organization == nil || d.Organization.ProjectV2 == nil {
		return nil, ErrProjectNotFound
	}

	if d.Organization.ProjectV2.Field == nil {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}

	return d.Organization.ProjectV2.Field, nil
}

// FetchItems implements workitem.Source. It follows the cursor until the last page.
func (c *Client) FetchItems(ctx context.Context) ([]workitem.Item, error) {
	var (
		items  []workitem.Item
		cursor *string
		pages  int
	)

	for {
		vars := c.projectVariables()
		vars["first"] = c.pageSize
		vars["next"] = cursor
		vars["iteration"] = c.fields.Iteration
		vars["team"] = c.fields.Team
		vars["status"] = c.fields.Status
		vars["qa"] = c.fields.QA
		vars["complexity"] = c.fields.Complexity

		var data itemsData

		err := c.do(ctx, "items", queryItems, vars, &data)
		if err != nil {
			return nil, err
		}

		if data.Organization == nil || data.Organization.ProjectV2 == nil {
			return nil, fmt.Errorf("github items: %w", ErrProjectNotFound)
		}

		page := data.Organization.ProjectV2.Items
		for _, node := range page.Nodes {
			items = append(items, node.item())
		}

		pages++

		if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == "" {
			break
		}

		next := page.PageInfo.EndCursor
		cursor = &next
	}

	c.logger.DebugContext(ctx, "fetched project items", "items", len(items), "pages", pages)

	if items == nil {
		items = []workitem.Item{}
	}

	return items, nil
}

// FetchIterations implements workitem.Source. Open iterations come first,
// followed by completed ones unless openOnly is set.
func (c *Client) FetchIterations(ctx context.Context, openOnly bool) ([]workitem.Iteration, error) {
	vars := c.projectVariables()
	vars["field"] = c.fields.Iteration

	var data fieldData

	err := c.do(ctx, "iterations", queryIterations, vars, &data)
	if err != nil {
		return nil, err
	}

	field, err := data.field(c.fields.Iteration)
	if err != nil {
		return nil, fmt.Errorf("github iterations: %w", err)
	}

	if field.Configuration == nil {
		return nil, fmt.Errorf("github iterations: %w: %s is not an iteration field", ErrFieldNotFound, c.fields.Iteration)
	}

	nodes := field.Configuration.Iterations
	if !openOnly {
		nodes = append(nodes, field.Configuration.CompletedIterations...)
	}

	iterations := make([]workitem.Iteration, 0, len(nodes))

	for _, node := range nodes {
		start, parseErr := workitem.ParseDate(node.StartDate)
		if parseErr != nil {
			return nil, fmt.Errorf("github iterations: %s: %w", node.Title, parseErr)
		}

		it := workitem.Iteration{Title: node.Title, StartDate: start, Duration: node.Duration}

		validateErr := it.Validate()
		if validateErr != nil {
			return nil, fmt.Errorf("github iterations: %w", validateErr)
		}

		iterations = append(iterations, it)
	}

	return iterations, nil
}

// FetchEnumeration implements workitem.Source for single-select fields.
func (c *Client) FetchEnumeration(ctx context.Context, fieldName string) ([]workitem.Field, error) {
	vars := c.projectVariables()
	vars["field"] = fieldName

	var data fieldData

	err := c.do(ctx, "options", queryEnumeration, vars, &data)
	if err != nil {
		return nil, err
	}

	field, err := data.field(fieldName)
	if err != nil {
		return nil, fmt.Errorf("github options: %w", err)
	}

	if field.Options == nil {
		return nil, fmt.Errorf("github options: %w: %s is not a single-select field", ErrFieldNotFound, fieldName)
	}

	options := make([]workitem.Field, 0, len(field.Options))
	for _, opt := range field.Options {
		options = append(options, workitem.Field{Value: opt.Name, Color: opt.Color})
	}

	return options, nil
}
