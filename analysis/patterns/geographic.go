package patterns

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/AtlasData/atlas-insight-go/analysis/tabular"
	"github.com/AtlasData/atlas-insight-go/pkg/models"
)

var geoColumnPattern = regexp.MustCompile(`(?i)(^lat$|^lng$|^lon$|latitude|longitude|country|region|state|city|county|province)`)

// geoEntry is one location's aggregate
type geoEntry struct {
	Location string
	Count    int
	Total    float64
}

// detectGeographic activates when any column name carries a location
// token. Records are aggregated per distinct location value with a count
// and, when a numeric column exists, a total.
func (a *Analyzer) detectGeographic(table *tabular.Table) []models.Visualization {
	var geoCol string
	for _, name := range table.Columns {
		if geoColumnPattern.MatchString(name) {
			geoCol = name
			break
		}
	}
	if geoCol == "" {
		return nil
	}

	metric, hasMetric := primaryNumeric(table)
	if metric == geoCol {
		hasMetric = false
	}

	totals := make(map[string]*geoEntry)
	var order []string
	for _, row := range table.Rows {
		gv, ok := row[geoCol]
		if !ok || gv.IsNull() {
			continue
		}
		location, ok := gv.AsText()
		if !ok {
			continue
		}
		entry, seen := totals[location]
		if !seen {
			entry = &geoEntry{Location: location}
			totals[location] = entry
			order = append(order, location)
		}
		entry.Count++
		if hasMetric {
			if mv, ok := row[metric]; ok && !mv.IsNull() {
				if f, ok := mv.AsNumber(); ok {
					entry.Total += f
				}
			}
		}
	}
	if len(order) < 2 {
		return nil
	}

	entries := make([]geoEntry, 0, len(order))
	for _, location := range order {
		entries = append(entries, *totals[location])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if hasMetric {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > a.cfg.MaxGeoEntries {
		entries = entries[:a.cfg.MaxGeoEntries]
	}

	top := entries[0]
	description := fmt.Sprintf("%s has the most records (%d)", top.Location, top.Count)
	if hasMetric {
		description = fmt.Sprintf("%s leads with a total %s of %.2f", top.Location, metric, top.Total)
	}

	insight := models.DataInsight{
		Type:        models.InsightDistribution,
		Title:       fmt.Sprintf("Geographic concentration in %s", top.Location),
		Description: description,
		Confidence:  0.75,
		Impact:      models.ImpactMedium,
		Data:        map[string]any{"locations": len(entries), "top": top.Location},
	}

	data := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		point := map[string]any{
			geoCol:  e.Location,
			"count": e.Count,
		}
		if hasMetric {
			point[metric] = e.Total
		}
		data = append(data, point)
	}

	yAxis := "count"
	if hasMetric {
		yAxis = metric
	}
	return []models.Visualization{{
		ID:          newID(),
		Title:       fmt.Sprintf("Records by %s", geoCol),
		Type:        models.ChartMap,
		Data:        data,
		Insights:    []models.DataInsight{insight},
		XAxis:       geoCol,
		YAxis:       yAxis,
		Description: fmt.Sprintf("Aggregated records per %s value", geoCol),
		Purpose:     "geographic",
	}}
}
