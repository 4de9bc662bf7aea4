// Package schema keeps a static registry of the tables the application maps and
// checks that the live database still matches them.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

// ErrIncompatibleModel is returned when at least one table does not match its model.
var ErrIncompatibleModel = apperrors.New("table is not compatible with the model")

// Descriptor declares the table backing one model.
type Descriptor struct {
	Name    string
	Schema  string
	Table   string
	Columns []string
}

// QualifiedTable returns the quoted schema.table name.
func (d Descriptor) QualifiedTable() string {
	if d.Schema == "" {
		return pq.QuoteIdentifier(d.Table)
	}
	return pq.QuoteIdentifier(d.Schema) + "." + pq.QuoteIdentifier(d.Table)
}

// Registry holds model descriptors in registration order.
type Registry struct {
	descriptors []Descriptor
	index       map[string]int
}

// NewRegistry creates a registry seeded with descriptors.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{index: make(map[string]int)}
	for _, d := range descriptors {
		r.Register(d)
	}
	return r
}

// Register adds d, replacing any descriptor with the same name.
func (r *Registry) Register(d Descriptor) {
	if i, ok := r.index[d.Name]; ok {
		r.descriptors[i] = d
		return
	}
	r.index[d.Name] = len(r.descriptors)
	r.descriptors = append(r.descriptors, d)
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Descriptors returns every registered descriptor.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// ModelResult is the validation outcome of one model.
type ModelResult struct {
	Name    string
	OK      bool
	Message string
}

// Report aggregates the validation of every model.
type Report struct {
	Results []ModelResult
}

// OK returns the names of the models that matched their table.
func (r Report) OK() []string {
	return r.names(true)
}

// Failed returns the names of the models that did not match their table.
func (r Report) Failed() []string {
	return r.names(false)
}

func (r Report) names(ok bool) []string {
	names := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		if result.OK == ok {
			names = append(names, result.Name)
		}
	}
	return names
}

// Err returns ErrIncompatibleModel when any model failed.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return apperrors.Wrap(ErrIncompatibleModel, strings.Join(failed, ", "))
}

// Validator selects the declared columns of every registered model.
type Validator struct {
	db       *sql.DB
	registry *Registry
	exclude  map[string]struct{}
	logger   *slog.Logger
}

// NewValidator creates a Validator; models named in exclude are skipped.
func NewValidator(db *sql.DB, registry *Registry, logger *slog.Logger, exclude ...string) *Validator {
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	return &Validator{db: db, registry: registry, exclude: skip, logger: logger}
}

// Validate checks every model and never stops at the first failure.
func (v *Validator) Validate(ctx context.Context) Report {
	var report Report
	for _, d := range v.registry.Descriptors() {
		if _, skip := v.exclude[d.Name]; skip {
			continue
		}

		result := ModelResult{Name: d.Name, OK: true, Message: "ok"}
		if err := v.check(ctx, d); err != nil {
			result.OK = false
			result.Message = err.Error()
			v.logger.Error("model validation failed", slog.String("model", d.Name), slog.Any("error", err))
		} else {
			v.logger.Debug("model validated", slog.String("model", d.Name))
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (v *Validator) check(ctx context.Context, d Descriptor) error {
	columns := make([]string, len(d.Columns))
	for i, column := range d.Columns {
		columns[i] = pq.QuoteIdentifier(column)
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT 1", strings.Join(columns, ", "), d.QualifiedTable())
	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	return rows.Err()
}
