// Package load simulates shoppers hitting the storefront with a weighted mix
// of HTTP requests.
package load

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sort"
	"time"
)

// Task is one kind of request a simulated user can issue.
type Task struct {
	Name   string
	Method string
	Path   string
	Body   []byte // sent as JSON when set
	Weight int
}

// Profile is the task mix plus the think time between requests.
type Profile struct {
	Tasks   []Task
	MinWait time.Duration
	MaxWait time.Duration
}

// DefaultProfile is the shopper mix: add-to-cart twice as often as browsing,
// viewing the cart or opening checkout.
func DefaultProfile() Profile {
	return Profile{
		Tasks: []Task{
			{Name: "browse", Method: http.MethodGet, Path: "/en/products", Weight: 1},
			{Name: "add-to-cart", Method: http.MethodPost, Path: "/en/cart/add", Body: []byte(`{"product_id":1,"quantity":1}`), Weight: 2},
			{Name: "view-cart", Method: http.MethodGet, Path: "/en/cart", Weight: 1},
			{Name: "checkout", Method: http.MethodGet, Path: "/en/checkout", Weight: 1},
		},
		MinWait: time.Second,
		MaxWait: 5 * time.Second,
	}
}

// Validate checks task definitions and wait bounds.
func (p Profile) Validate() error {
	if len(p.Tasks) == 0 {
		return errors.New("profile has no tasks")
	}
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		switch {
		case t.Name == "":
			return errors.New("task needs a name")
		case seen[t.Name]:
			return fmt.Errorf("duplicate task %q", t.Name)
		case t.Weight <= 0:
			return fmt.Errorf("task %s: weight must be positive, got %d", t.Name, t.Weight)
		case t.Method == "":
			return fmt.Errorf("task %s: missing method", t.Name)
		case len(t.Path) == 0 || t.Path[0] != '/':
			return fmt.Errorf("task %s: path %q must be absolute", t.Name, t.Path)
		}
		seen[t.Name] = true
	}
	if p.MinWait < 0 || p.MaxWait < p.MinWait {
		return fmt.Errorf("invalid think time [%s, %s]", p.MinWait, p.MaxWait)
	}
	return nil
}

// think draws a uniform wait in [MinWait, MaxWait].
func (p Profile) think(rng *rand.Rand) time.Duration {
	span := p.MaxWait - p.MinWait
	if span <= 0 {
		return p.MinWait
	}
	return p.MinWait + time.Duration(rng.Int64N(int64(span)+1))
}

// Table picks tasks in proportion to their weights.
type Table struct {
	tasks []Task
	cum   []int
	total int
}

// NewTable builds a table from validated tasks.
func NewTable(tasks []Task) (*Table, error) {
	if len(tasks) == 0 {
		return nil, errors.New("no tasks")
	}
	t := &Table{tasks: tasks, cum: make([]int, len(tasks))}
	for i, task := range tasks {
		if task.Weight <= 0 {
			return nil, fmt.Errorf("task %s: weight must be positive", task.Name)
		}
		t.total += task.Weight
		t.cum[i] = t.total
	}
	return t, nil
}

// Pick returns a task with probability weight/total.
func (t *Table) Pick(rng *rand.Rand) Task {
	n := rng.IntN(t.total)
	i := sort.SearchInts(t.cum, n+1)
	return t.tasks[i]
}

// Names lists the tasks in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.tasks))
	for i, task := range t.tasks {
		names[i] = task.Name
	}
	return names
}

// Share is the expected fraction of picks for the named task.
func (t *Table) Share(name string) float64 {
	for _, task := range t.tasks {
		if task.Name == name {
			return float64(task.Weight) / float64(t.total)
		}
	}
	return 0
}
