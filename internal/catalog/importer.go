// Package catalog loads category ranges and cost definitions from CSV exports.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
)

// Result summarizes one import.
type Result struct {
	TotalRows int      `json:"totalRows"`
	Created   int      `json:"created"`
	Errors    []string `json:"errors"`
	Overlaps  []string `json:"overlaps"`
}

func (r *Result) fail(row int, format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", row, fmt.Sprintf(format, args...)))
}

// Importer writes CSV rows into the catalog collections. With DryRun set rows
// are validated but nothing is stored.
type Importer struct {
	seasons    repositories.SeasonRepository
	categories repositories.CategoryRepository
	costs      repositories.CostRepository
	DryRun     bool
}

// NewImporter creates a new Importer
func NewImporter(seasons repositories.SeasonRepository, categories repositories.CategoryRepository, costs repositories.CostRepository) *Importer {
	return &Importer{seasons: seasons, categories: categories, costs: costs}
}

// ImportCategories reads category ranges. Ranges of the same sex and season
// that share a day are stored but reported in Result.Overlaps.
func (i *Importer) ImportCategories(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := newTable(r, map[string][]string{
		"sexo":        {"sexo", "sex", "genero"},
		"temporada":   {"temporada", "season"},
		"temporadaId": {"temporadaid", "temporada_id", "season_id"},
		"nombre":      {"nombre_categoria", "categoria", "category"},
		"inicio":      {"fecha_inicio", "inicio", "start"},
		"fin":         {"fecha_fin", "fin", "end"},
	}, "sexo", "temporada", "nombre", "inicio", "fin")
	if err != nil {
		return nil, err
	}
	seasonIDs, err := i.seasonIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: []string{}, Overlaps: []string{}}
	seen := map[string][]models.CategoryRange{}
	for rows.next() {
		result.TotalRows++
		row := rows.line()
		if rows.err != nil {
			result.fail(row, "%v", rows.err)
			continue
		}

		sex := models.Sex(strings.ToLower(rows.get("sexo")))
		if !sex.Valid() {
			result.fail(row, "invalid sex %q", rows.get("sexo"))
			continue
		}
		start, err := models.ParseDate(rows.get("inicio"))
		if err != nil {
			result.fail(row, "invalid start date %q", rows.get("inicio"))
			continue
		}
		end, err := models.ParseDate(rows.get("fin"))
		if err != nil {
			result.fail(row, "invalid end date %q", rows.get("fin"))
			continue
		}
		if end.Before(start) {
			result.fail(row, "end date is before start date")
			continue
		}
		name := rows.get("nombre")
		if name == "" {
			result.fail(row, "category name is empty")
			continue
		}

		season := rows.get("temporada")
		c := models.CategoryRange{
			Sex:        sex,
			SeasonName: season,
			SeasonID:   firstNonEmpty(rows.get("temporadaId"), seasonIDs[season]),
			Name:       name,
			StartDate:  models.NewDate(start),
			EndDate:    models.NewDate(end),
		}

		key := string(sex) + "|" + season
		for _, other := range seen[key] {
			if c.Overlaps(other) {
				result.Overlaps = append(result.Overlaps, fmt.Sprintf("Row %d: %s overlaps %s (%s, %s)", row, name, other.Name, sex, season))
			}
		}
		seen[key] = append(seen[key], c)

		if i.DryRun {
			continue
		}
		if _, err := i.categories.Create(ctx, &c); err != nil {
			result.fail(row, "failed to store category: %v", err)
			continue
		}
		result.Created++
	}

	slog.Info("Imported categories", "rows", result.TotalRows, "created", result.Created, "errors", len(result.Errors), "overlaps", len(result.Overlaps))
	return result, nil
}

// ImportCosts reads cost definitions for kind. Cheerleader costs carry no
// category.
func (i *Importer) ImportCosts(ctx context.Context, kind models.RegistrantKind, r io.Reader) (*Result, error) {
	required := []string{"temporada", "inscripcion"}
	if kind == models.KindPlayer {
		required = append(required, "categoria")
	}
	rows, err := newTable(r, map[string][]string{
		"temporada":       {"temporada", "season"},
		"temporadaId":     {"temporadaid", "temporada_id", "season_id"},
		"categoria":       {"categoria", "category"},
		"inscripcion":     {"inscripcion", "enrollment"},
		"primera_jornada": {"primera_jornada", "first_matchday"},
		"pesaje":          {"pesaje", "weigh_in"},
		"coaching":        {"coaching"},
	}, required...)
	if err != nil {
		return nil, err
	}
	seasonIDs, err := i.seasonIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: []string{}, Overlaps: []string{}}
	for rows.next() {
		result.TotalRows++
		row := rows.line()
		if rows.err != nil {
			result.fail(row, "%v", rows.err)
			continue
		}

		season := rows.get("temporada")
		if season == "" {
			result.fail(row, "season is empty")
			continue
		}
		cost := models.CostDefinition{
			SeasonName:    season,
			SeasonID:      firstNonEmpty(rows.get("temporadaId"), seasonIDs[season]),
			Enrollment:    models.ParseAmount(rows.get("inscripcion")),
			FirstMatchday: models.ParseAmount(rows.get("primera_jornada")),
			WeighIn:       models.ParseAmount(rows.get("pesaje")),
			Coaching:      models.ParseAmount(rows.get("coaching")),
		}
		if kind == models.KindPlayer {
			cost.Category = rows.get("categoria")
			if cost.Category == "" {
				result.fail(row, "category is empty")
				continue
			}
		}

		if i.DryRun {
			continue
		}
		if _, err := i.costs.Create(ctx, kind, &cost); err != nil {
			result.fail(row, "failed to store cost: %v", err)
			continue
		}
		result.Created++
	}

	slog.Info("Imported costs", "kind", kind, "rows", result.TotalRows, "created", result.Created, "errors", len(result.Errors))
	return result, nil
}

// seasonIDs maps known season names to their ids.
func (i *Importer) seasonIDs(ctx context.Context) (map[string]string, error) {
	seasons, err := i.seasons.FindByStates(ctx, models.SeasonActive, models.SeasonInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to load seasons: %w", err)
	}
	ids := make(map[string]string, len(seasons))
	for _, s := range seasons {
		ids[s.Name] = s.ID.Hex()
	}
	return ids, nil
}

// table walks CSV rows addressing cells by logical column name.
type table struct {
	reader  *csv.Reader
	columns map[string]int
	row     []string
	err     error
	eof     bool
	read    int
}

func newTable(r io.Reader, aliases map[string][]string, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(aliases))
	for name, names := range aliases {
		if idx := findColumnIndex(header, names); idx != -1 {
			columns[name] = idx
		}
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%s column not found in CSV", name)
		}
	}
	return &table{reader: reader, columns: columns}, nil
}

func (t *table) next() bool {
	if t.eof {
		return false
	}
	t.row, t.err = t.reader.Read()
	if errors.Is(t.err, io.EOF) {
		t.eof = true
		return false
	}
	t.read++
	return true
}

// line is the 1-based file line of the current row, counting the header.
func (t *table) line() int {
	return t.read + 1
}

func (t *table) get(name string) string {
	idx, ok := t.columns[name]
	if !ok || idx >= len(t.row) {
		return ""
	}
	return strings.TrimSpace(t.row[idx])
}

// findColumnIndex returns the index of the first header matching one of
// names, ignoring case and surrounding spaces, or -1.
func findColumnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
