package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/stwalsh4118/taxroll/internal/logger"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/services"
	"golang.org/x/sync/errgroup"
)

// Kind is the entity type a file holds.
type Kind string

const (
	KindMunicipalities Kind = "municipalities"
	KindProperties     Kind = "properties"
)

// ErrUnknownKind is returned for kinds other than municipalities and properties.
var ErrUnknownKind = errors.New("unknown import kind")

// ParseKind validates an entity kind name.
func ParseKind(name string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindMunicipalities:
		return KindMunicipalities, nil
	case KindProperties:
		return KindProperties, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MissingColumnsError is returned when a file lacks required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// MunicipalityStore is the municipality surface the importer writes through.
type MunicipalityStore interface {
	MunicipalityLookup
	Upsert(ctx context.Context, m models.Municipality) (bool, error)
	EnsureExists(ctx context.Context, m models.Municipality) (bool, error)
}

// PropertyStore is the property surface the importer writes through.
type PropertyStore interface {
	UpsertByRollNumber(ctx context.Context, in services.PropertyInput) (bool, error)
}

// Options tune a single import run.
type Options struct {
	// FailFast stops scheduling rows after the first row error.
	FailFast bool
}

// RowError describes why one row was rejected.
type RowError struct {
	Error string `json:"error"`
	Line  int    `json:"line"`
}

// Result summarizes an import run.
type Result struct {
	Kind                      Kind       `json:"kind"`
	Errors                    []RowError `json:"errors"`
	AutoCreatedMunicipalities []int64    `json:"auto_created_municipalities,omitempty"`
	Total                     int        `json:"total"`
	Created                   int        `json:"created"`
	Updated                   int        `json:"updated"`
	Failed                    int        `json:"failed"`
	Skipped                   int        `json:"skipped"`
}

// Importer upserts tabular rows into the store using a bounded worker pool.
type Importer struct {
	municipalities MunicipalityStore
	properties     PropertyStore
	log            *logger.Logger
	workers        int
}

// New creates an Importer. workers below 1 is treated as 1.
func New(municipalities MunicipalityStore, properties PropertyStore, log *logger.Logger, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		municipalities: municipalities,
		properties:     properties,
		log:            log.WithComponent("importer"),
		workers:        workers,
	}
}

// Import reads a file of the given kind and format and upserts every row.
func (imp *Importer) Import(ctx context.Context, kind Kind, r io.Reader, format Format, opts Options) (*Result, error) {
	table, err := ReadTable(r, format)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindMunicipalities:
		return imp.ImportMunicipalities(ctx, table, opts)
	case KindProperties:
		return imp.ImportProperties(ctx, table, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

var (
	municipalityRequired = []string{ColMunicipalID, ColMunicipalName, ColMunicipalRate, ColEducationRate}
	propertyRequired     = []string{ColAssessmentRollNumber, ColAssessmentValue, ColMunicipalID}
)

// ImportMunicipalities upserts municipality rows keyed on municipal_id.
// Rows sharing an id are applied in file order so the last one wins.
func (imp *Importer) ImportMunicipalities(ctx context.Context, table *Table, opts Options) (*Result, error) {
	canonical, err := canonicalRows(table, municipalityAliases, municipalityRequired)
	if err != nil {
		return nil, err
	}

	key := func(row Row) string {
		if id, err := ParseMunicipalID(row.Values[ColMunicipalID]); err == nil {
			return strconv.FormatInt(id, 10)
		}
		return ""
	}

	return imp.run(ctx, KindMunicipalities, canonical, key, opts, func(ctx context.Context, row Row, res *outcome) error {
		m, err := parseMunicipalityRow(row.Values)
		if err != nil {
			return err
		}
		created, err := imp.municipalities.Upsert(ctx, m)
		if err != nil {
			return err
		}
		res.created = created
		return nil
	})
}

// ImportProperties upserts property rows keyed on assessment_roll_number,
// auto-creating placeholder municipalities for unknown ids.
func (imp *Importer) ImportProperties(ctx context.Context, table *Table, opts Options) (*Result, error) {
	canonical, err := canonicalRows(table, propertyAliases, propertyRequired)
	if err != nil {
		return nil, err
	}

	key := func(row Row) string {
		return strings.TrimSpace(row.Values[ColAssessmentRollNumber])
	}

	return imp.run(ctx, KindProperties, canonical, key, opts, func(ctx context.Context, row Row, res *outcome) error {
		plan, err := PlanProperty(ctx, imp.municipalities, row.Line, row.Values)
		if err != nil {
			return err
		}
		return imp.applyProperty(ctx, plan, res)
	})
}

// applyProperty persists a plan: the placeholder municipality first when
// the plan calls for one, then the property upsert.
func (imp *Importer) applyProperty(ctx context.Context, plan *PropertyPlan, res *outcome) error {
	if plan.Municipal.Action == ActionCreate {
		created, err := imp.municipalities.EnsureExists(ctx, *plan.Municipal.Placeholder)
		if err != nil {
			return fmt.Errorf("creating municipality %d: %w", plan.Municipal.MunicipalID, err)
		}
		if created {
			res.autoCreated = plan.Municipal.MunicipalID
		}
	}

	created, err := imp.properties.UpsertByRollNumber(ctx, plan.Input)
	if err != nil {
		return err
	}
	res.created = created
	return nil
}

// canonicalRows rewrites every row to canonical columns. Required columns
// are checked against the header, so a header-only file still fails.
func canonicalRows(table *Table, aliases map[string]string, required []string) ([]Row, error) {
	sources := columnSources(table.Headers, aliases)

	var missing []string
	for _, col := range required {
		if _, ok := sources[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	out := make([]Row, len(table.Rows))
	for i, row := range table.Rows {
		out[i] = Row{Line: row.Line, Values: canonicalize(row.Values, sources)}
	}
	return out, nil
}

// outcome is what processing a single row produced.
type outcome struct {
	autoCreated int64
	created     bool
}

type rowFunc func(ctx context.Context, row Row, res *outcome) error

// run groups rows by identity key and processes groups concurrently, the
// rows inside a group sequentially in file order. Rows with an empty key
// cannot collide and each form their own group.
func (imp *Importer) run(ctx context.Context, kind Kind, rows []Row, key func(Row) string, opts Options, fn rowFunc) (*Result, error) {
	result := &Result{Kind: kind, Total: len(rows), Errors: []RowError{}}

	groups := groupRows(rows, key)

	var (
		mu      sync.Mutex
		stopped atomic.Bool
	)

	record := func(row Row, res outcome, err error) {
		mu.Lock()
		defer mu.Unlock()

		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Line: row.Line, Error: err.Error()})
			imp.log.Warn("Import row rejected", logger.Fields{"kind": kind, "line": row.Line, "error": err.Error()})
			return
		}
		if res.created {
			result.Created++
		} else {
			result.Updated++
		}
		if res.autoCreated != 0 {
			result.AutoCreatedMunicipalities = append(result.AutoCreatedMunicipalities, res.autoCreated)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.workers)

	for _, group := range groups {
		if stopped.Load() || gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for _, row := range group {
				if stopped.Load() {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}

				var res outcome
				err := fn(gctx, row, &res)
				record(row, res, err)
				if err != nil && opts.FailFast {
					stopped.Store(true)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Skipped = result.Total - result.Created - result.Updated - result.Failed
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Line < result.Errors[j].Line })
	sort.Slice(result.AutoCreatedMunicipalities, func(i, j int) bool {
		return result.AutoCreatedMunicipalities[i] < result.AutoCreatedMunicipalities[j]
	})

	imp.log.Info("Import finished", logger.Fields{
		"kind":    kind,
		"total":   result.Total,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	})
	return result, nil
}

// groupRows buckets rows by key preserving first-seen group order and
// file order within each group.
func groupRows(rows []Row, key func(Row) string) [][]Row {
	index := make(map[string]int)
	var groups [][]Row
	for _, row := range rows {
		k := key(row)
		if k == "" {
			groups = append(groups, []Row{row})
			continue
		}
		if i, ok := index[k]; ok {
			groups[i] = append(groups[i], row)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, []Row{row})
	}
	return groups
}
