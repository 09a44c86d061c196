// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/analysis"
	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

// Input is what a dashboard builder works from. Dataset is set for
// per-project dashboards.
type Input struct {
	Source   Source
	Dataset  *ged.Dataset
	Query    Query
	Settings Settings
}

// Dashboard describes one dashboard of the registry. PerProject dashboards
// work on the dataset of Query.Project. Filters lists the query parameters
// the dashboard reads.
type Dashboard struct {
	ID          string
	Title       string
	Description string
	PerProject  bool
	Filters     []string
	build       func(context.Context, Input) (*Report, error)
}

var dashboards = []Dashboard{
	{
		ID:          "alerts",
		Title:       "Alertes sur les indices",
		Description: "Nombre d'indices et part des indices dominants par lot ou type de document",
		PerProject:  true,
		Filters:     []string{"category", "group", "search", "alert1", "alert2"},
		build:       buildAlerts,
	},
	{
		ID:          "index-stats",
		Title:       "Nombre d'indices par type de document",
		Description: "Statistique du nombre d'indices et de la durée de vie des documents",
		PerProject:  true,
		Filters:     []string{"category", "stat"},
		build:       buildIndexStats,
	},
	{
		ID:          "durations",
		Title:       "Durée entre versions de documents",
		Description: "Jours entre deux dépôts successifs d'un même document",
		PerProject:  true,
		Filters:     []string{"category", "stat"},
		build:       buildDurations,
	},
	{
		ID:          "evolution",
		Title:       "Évolution des types de documents",
		Description: "Dépôts mensuels et cumul par type de document",
		PerProject:  true,
		Filters:     []string{"types"},
		build:       buildEvolution,
	},
	{
		ID:          "flows",
		Title:       "Flux des documents",
		Description: "Projet, émetteur, type de document et indice",
		PerProject:  true,
		build:       buildFlows,
	},
	{
		ID:          "distribution",
		Title:       "Analyse des documents par lot et indice",
		Description: "Répartition des documents par lot, type et indice",
		PerProject:  true,
		Filters:     []string{"indices"},
		build:       buildDistribution,
	},
	{
		ID:          "actors",
		Title:       "Identification des acteurs principaux",
		Description: "Documents par émetteur et par déposant",
		PerProject:  true,
		build:       buildActors,
	},
	{
		ID:          "mass",
		Title:       "Analyse de la masse de documents par projet",
		Description: "Comparaison du volume de dépôts entre projets sur une même période",
		PerProject:  false,
		Filters:     []string{"projects", "period"},
		build:       buildMass,
	},
	{
		ID:          "calendar",
		Title:       "Calendrier des projets",
		Description: "Début, fin et durée de chaque lot ou type de document",
		PerProject:  true,
		Filters:     []string{"category"},
		build:       buildCalendar,
	},
	{
		ID:          "lot-calendar",
		Title:       "Calendrier par lot",
		Description: "Calendrier des types de document d'un lot",
		PerProject:  true,
		Filters:     []string{"lot"},
		build:       buildLotCalendar,
	},
	{
		ID:          "sequence",
		Title:       "Analyse séquentielle des documents",
		Description: "Dates moyennes, regroupements et dépôts atypiques",
		PerProject:  true,
		Filters:     []string{"period", "lot"},
		build:       buildSequence,
	},
}

// Dashboards lists the registry in display order.
func Dashboards() []Dashboard {
	out := make([]Dashboard, len(dashboards))
	copy(out, dashboards)
	return out
}

// Lookup finds a dashboard by id.
func Lookup(id string) (Dashboard, error) {
	for _, d := range dashboards {
		if d.ID == id {
			return d, nil
		}
	}
	return Dashboard{}, errors.Newf(errors.CodeNotFound, "unknown dashboard %q", id).WithContext("dashboard", id)
}

// Accepts reports whether the dashboard reads the named query parameter.
func (d Dashboard) Accepts(filter string) bool {
	return contains(d.Filters, filter)
}

func buildAlerts(_ context.Context, in Input) (*Report, error) {
	q := in.Query
	field := q.categoryOr(ged.FieldLot)
	th := in.Settings.Thresholds

	all := analysis.IndexAlerts(in.Dataset, field, th)
	rows := analysis.FilterIndexAlerts(all, analysis.AlertFilter{
		Group:         q.Group,
		GroupContains: q.Search,
		Alert1:        q.Alert1,
		Alert2:        q.Alert2,
	})

	summary := Table{
		Title: "Alertes par " + field.Header(),
		Headers: []string{
			field.Header(), "Total indices", "Compteur indice", "Dernier indice",
			fmt.Sprintf("Part des %d principaux indices", th.TopN), "Alerte 1", "Alerte 2",
		},
		Alerts: map[int]alert.Kind{5: alert.IndexCount, 6: alert.TopShare},
	}
	shares := Table{
		Title:   "Répartition des indices",
		Headers: []string{field.Header(), "INDICE", "Nombre de documents", "Proportion (%)"},
	}
	for _, r := range rows {
		summary.AddRow(r.Group, strconv.Itoa(r.Total), strconv.Itoa(r.Distinct), r.Last,
			r.TopShareLabel(), r.Alert1.Label(alert.IndexCount), r.Alert2.Label(alert.TopShare))
		for _, s := range r.Shares {
			shares.AddRow(r.Group, s.Index, strconv.Itoa(s.Count), formatFloat(s.Percent))
		}
	}

	rep := &Report{
		Tables: []Table{summary, shares},
		Charts: []Chart{
			pieChart("Alerte 1 : nombre d'indices", analysis.AlertDistribution(rows, alert.IndexCount)),
			pieChart("Alerte 2 : part des principaux indices", analysis.AlertDistribution(rows, alert.TopShare)),
		},
	}
	groups := make([]string, 0, len(all))
	for _, r := range all {
		groups = append(groups, r.Group)
	}
	rep.addMeta("category", field.String())
	rep.addMeta("groups", groups)
	rep.addMeta("total_groups", len(all))
	rep.addMeta("shown_groups", len(rows))
	return rep, nil
}

func pieChart(title string, slices []analysis.Slice) Chart {
	c := Chart{Kind: ChartPie, Title: title}
	s := Series{Name: "Groupes"}
	for _, sl := range slices {
		c.Labels = append(c.Labels, sl.Label)
		s.Values = append(s.Values, float64(sl.Count))
		s.Colors = append(s.Colors, sl.Color)
	}
	c.Series = []Series{s}
	return c
}

func buildIndexStats(_ context.Context, in Input) (*Report, error) {
	field := in.Query.categoryOr(ged.FieldDocumentType)
	stat := in.Query.statOr(analysis.StatMean)
	rows := analysis.Preprocess(in.Dataset)

	counts := analysis.IndexCountStats(rows, field, stat)
	spans := analysis.SpanStats(rows, field, stat)

	countCol := "Nombre d'indices (" + stat.Label() + ")"
	spanCol := "Durée de vie en jours (" + stat.Label() + ")"
	rep := &Report{
		Tables: []Table{
			statTable("Nombre d'indices par "+field.Header(), field, countCol, counts),
			statTable("Durée de vie des documents par "+field.Header(), field, spanCol, spans),
		},
		Charts: []Chart{
			statChart(countCol+" par "+field.Header(), field, countCol, counts),
			statChart(spanCol+" par "+field.Header(), field, spanCol, spans),
		},
	}
	rep.addMeta("category", field.String())
	rep.addMeta("stat", string(stat))
	if len(counts) > 0 {
		rep.addMeta("mean", groupMean(counts))
	}
	return rep, nil
}

func statTable(title string, field ged.Field, valueCol string, stats []analysis.GroupStat) Table {
	t := Table{Title: title, Headers: []string{field.Header(), valueCol, "Valeurs"}}
	for _, s := range stats {
		t.AddRow(s.Group, formatFloat(s.Value), strconv.Itoa(s.Count))
	}
	return t
}

// statChart draws one bar per group plus a flat "Moyenne" series at the
// mean of the group values.
func statChart(title string, field ged.Field, valueCol string, stats []analysis.GroupStat) Chart {
	c := Chart{Kind: ChartBar, Title: title, XLabel: field.Header(), YLabel: valueCol}
	s := Series{Name: valueCol}
	for _, st := range stats {
		c.Labels = append(c.Labels, st.Group)
		s.Values = append(s.Values, analysis.Round(st.Value, 2))
	}
	c.Series = []Series{s}
	if len(stats) == 0 {
		return c
	}
	mean := groupMean(stats)
	ref := make([]float64, len(stats))
	for i := range ref {
		ref[i] = mean
	}
	c.Series = append(c.Series, Series{Name: "Moyenne", Values: ref})
	return c
}

// groupMean is the unweighted mean of the group values, rounded to two
// decimals.
func groupMean(stats []analysis.GroupStat) float64 {
	vals := make([]float64, len(stats))
	for i, st := range stats {
		vals[i] = st.Value
	}
	return analysis.Round(analysis.Mean(vals), 2)
}

func buildDurations(_ context.Context, in Input) (*Report, error) {
	field := in.Query.categoryOr(ged.FieldLot)
	stat := in.Query.statOr(analysis.StatMean)
	rows := analysis.Preprocess(in.Dataset)

	gaps := analysis.GapStats(rows, field, stat)
	valueCol := "Durée " + stat.Label() + " entre versions (jours)"

	box := Chart{Kind: ChartBox, Title: "Distribution des durées par " + field.Header(), Boxes: make(map[string]analysis.Box)}
	values := analysis.GroupValues(rows, field)
	for _, g := range sortedKeys(values) {
		if b, ok := analysis.BoxStats(values[g]); ok {
			box.Labels = append(box.Labels, g)
			box.Boxes[g] = b
		}
	}

	transitions := Table{
		Title:   "Transitions d'indice",
		Headers: []string{"TYPE DE DOCUMENT", "Libellé du document", "Transition", "Date", "Durée (jours)"},
	}
	for _, tt := range analysis.Transitions(rows) {
		for _, s := range tt.Steps {
			transitions.AddRow(tt.DocumentType, s.Label, s.Name(), formatDate(s.Date), strconv.Itoa(s.GapDays))
		}
	}

	rep := &Report{
		Tables: []Table{statTable(valueCol+" par "+field.Header(), field, valueCol, gaps), transitions},
		Charts: []Chart{statChart(valueCol+" par "+field.Header(), field, valueCol, gaps), box},
	}
	rep.addMeta("category", field.String())
	rep.addMeta("stat", string(stat))
	if len(gaps) > 0 {
		rep.addMeta("mean", groupMean(gaps))
	}
	return rep, nil
}

func buildEvolution(_ context.Context, in Input) (*Report, error) {
	series := analysis.MonthlyEvolution(in.Dataset, in.Query.Types)

	monthSet := make(map[string]struct{})
	for _, s := range series {
		for _, p := range s.Points {
			monthSet[p.Month.Format("2006-01")] = struct{}{}
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)
	pos := make(map[string]int, len(months))
	for i, m := range months {
		pos[m] = i
	}

	chart := Chart{Kind: ChartLine, Title: "Évolution mensuelle des dépôts", XLabel: "Mois", YLabel: "Nombre de documents", Labels: months}
	total := make([]float64, len(months))
	table := Table{
		Title:   "Dépôts mensuels par type de document",
		Headers: []string{"TYPE DE DOCUMENT", "Mois", "Nombre de documents", "Cumul"},
	}
	for _, s := range series {
		vals := make([]float64, len(months))
		for _, p := range s.Points {
			m := p.Month.Format("2006-01")
			vals[pos[m]] = float64(p.Count)
			total[pos[m]] += float64(p.Count)
			table.AddRow(s.DocumentType, m, strconv.Itoa(p.Count), strconv.Itoa(p.Cumulative))
		}
		chart.Series = append(chart.Series, Series{Name: s.DocumentType, Values: vals})
	}
	for i := 1; i < len(total); i++ {
		total[i] += total[i-1]
	}
	chart.Series = append(chart.Series, Series{Name: "Cumul", Values: total})

	rep := &Report{Tables: []Table{table}, Charts: []Chart{chart}}
	rep.addMeta("types", in.Dataset.Values(ged.FieldDocumentType))
	return rep, nil
}

func buildFlows(_ context.Context, in Input) (*Report, error) {
	g := analysis.Flows(in.Dataset)
	chart := Chart{Kind: ChartSankey, Title: "Flux des documents", Links: g.Links}
	for _, n := range g.Nodes {
		chart.Labels = append(chart.Labels, n.Label)
	}
	table := Table{Title: "Liens du flux", Headers: []string{"Source", "Cible", "Nombre de documents"}}
	for _, l := range g.Links {
		table.AddRow(g.Nodes[l.Source].Label, g.Nodes[l.Target].Label, strconv.Itoa(l.Value))
	}
	rep := &Report{Tables: []Table{table}, Charts: []Chart{chart}}
	rep.addMeta("nodes", len(g.Nodes))
	rep.addMeta("links", len(g.Links))
	return rep, nil
}

func buildDistribution(_ context.Context, in Input) (*Report, error) {
	ds := analysis.FilterIndices(in.Dataset, in.Query.Indices)
	rep := &Report{}
	for _, fields := range [][]ged.Field{
		{ged.FieldLot, ged.FieldIndex},
		{ged.FieldDocumentType, ged.FieldIndex},
		{ged.FieldLot, ged.FieldDocumentType, ged.FieldIndex},
	} {
		counts := analysis.Counts(ds, fields...)
		title := "Documents par " + headers(fields, ", ")
		rep.Tables = append(rep.Tables, countTable(title, fields, counts))
		rep.Charts = append(rep.Charts, treemap(title, counts))
	}
	for _, f := range []ged.Field{ged.FieldLot, ged.FieldDocumentType} {
		counts := analysis.CountBy(ds, f)
		rep.Charts = append(rep.Charts, countChart("Nombre de documents par "+f.Header(), ChartBarH, counts))
	}
	rep.addMeta("indices", in.Dataset.Values(ged.FieldIndex))
	rep.addMeta("records", ds.Len())
	return rep, nil
}

func treemap(title string, counts []analysis.Count) Chart {
	c := Chart{Kind: ChartTreemap, Title: title}
	s := Series{Name: "Nombre de documents"}
	for _, n := range counts {
		c.Labels = append(c.Labels, n.Key())
		c.Parents = append(c.Parents, strings.Join(n.Keys[:len(n.Keys)-1], " / "))
		s.Values = append(s.Values, float64(n.Count))
	}
	c.Series = []Series{s}
	return c
}

func countTable(title string, fields []ged.Field, counts []analysis.Count) Table {
	t := Table{Title: title}
	for _, f := range fields {
		t.Headers = append(t.Headers, f.Header())
	}
	t.Headers = append(t.Headers, "Nombre de documents")
	for _, c := range counts {
		t.AddRow(append(append([]string{}, c.Keys...), strconv.Itoa(c.Count))...)
	}
	return t
}

func countChart(title string, kind ChartKind, counts []analysis.Count) Chart {
	c := Chart{Kind: kind, Title: title, YLabel: "Nombre de documents"}
	s := Series{Name: "Nombre de documents"}
	for _, n := range counts {
		c.Labels = append(c.Labels, n.Key())
		s.Values = append(s.Values, float64(n.Count))
	}
	c.Series = []Series{s}
	return c
}

func buildActors(_ context.Context, in Input) (*Report, error) {
	a := analysis.Actors(in.Dataset)
	issuer := []ged.Field{ged.FieldIssuer, ged.FieldDocumentType}
	addedBy := []ged.Field{ged.FieldAddedBy, ged.FieldDocumentType}
	rep := &Report{
		Tables: []Table{
			countTable("Documents par émetteur et type", issuer, a.ByIssuer),
			countTable("Documents par déposant et type", addedBy, a.ByAddedBy),
		},
		Charts: []Chart{
			countChart("Documents par émetteur et type", ChartBarH, a.ByIssuer),
			countChart("Documents par déposant et type", ChartBarH, a.ByAddedBy),
		},
	}
	rep.addMeta("issuers", len(in.Dataset.Values(ged.FieldIssuer)))
	rep.addMeta("uploaders", len(in.Dataset.Values(ged.FieldAddedBy)))
	return rep, nil
}

func buildMass(ctx context.Context, in Input) (*Report, error) {
	names := in.Query.Projects
	if len(names) == 0 {
		names = in.Source.Names()
	}
	if len(names) == 0 {
		return nil, errors.New(errors.CodeNotFound, "no project available", nil)
	}
	datasets := make([]*ged.Dataset, 0, len(names))
	for _, name := range names {
		ds, err := in.Source.Dataset(ctx, name)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	period := in.Query.periodOr(analysis.Period6M)
	mc := analysis.CompareMass(datasets, period)

	table := Table{
		Title:   "Masse de documents, " + period.Label(),
		Headers: []string{"Projet", "Début", "Fin de période", "Masse de documents"},
	}
	chart := Chart{Kind: ChartBar, Title: "Masse de documents par projet, " + period.Label(), XLabel: "Projet", YLabel: "Masse de documents"}
	s := Series{Name: "Masse de documents"}
	for _, r := range mc.Rows {
		table.AddRow(r.Project, formatDate(r.Start), formatDate(r.End), strconv.Itoa(r.Mass))
		chart.Labels = append(chart.Labels, r.Project)
		s.Values = append(s.Values, float64(r.Mass))
	}
	median := make([]float64, len(mc.Rows))
	for i := range median {
		median[i] = mc.Median
	}
	chart.Series = []Series{s, {Name: "Médiane", Values: median}}

	rep := &Report{Tables: []Table{table}, Charts: []Chart{chart}}
	rep.addMeta("period", string(period))
	rep.addMeta("median", mc.Median)
	rep.addMeta("projects", names)
	return rep, nil
}

func buildCalendar(_ context.Context, in Input) (*Report, error) {
	field := in.Query.categoryOr(ged.FieldLot)
	rows := analysis.Calendar(in.Dataset, field)
	rep := &Report{
		Tables: []Table{calendarTable("Calendrier par "+field.Header(), field.Header(), rows)},
		Charts: []Chart{gantt("Calendrier par "+field.Header(), rows)},
	}
	rep.addMeta("category", field.String())
	return rep, nil
}

func buildLotCalendar(_ context.Context, in Input) (*Report, error) {
	lots := in.Dataset.Values(ged.FieldLot)
	lot := in.Query.Lot
	if lot == "" {
		if len(lots) == 0 {
			return nil, errors.New(errors.CodeEmptyDataset, "no lot in project", nil)
		}
		sort.Strings(lots)
		lot = lots[0]
	} else if !contains(lots, lot) {
		return nil, errors.Newf(errors.CodeNotFound, "unknown lot %q", lot).WithContext("lot", lot)
	}

	rows := analysis.LotCalendar(in.Dataset, lot)
	title := "Calendrier du lot " + lot
	rep := &Report{
		Title:  title,
		Tables: []Table{calendarTable(title, "TYPE DE DOCUMENT", rows)},
		Charts: []Chart{gantt(title, rows)},
	}
	sort.Strings(lots)
	rep.addMeta("lot", lot)
	rep.addMeta("lots", lots)
	return rep, nil
}

func calendarTable(title, groupHeader string, rows []analysis.CalendarRow) Table {
	t := Table{
		Title:   title,
		Headers: []string{groupHeader, "Date début", "Date fin", "Durée en jours", "Nombre de documents", "Types de documents"},
	}
	for _, r := range rows {
		t.AddRow(r.Group, formatDate(r.Start), formatDate(r.End), strconv.Itoa(r.DurationDays),
			strconv.Itoa(r.Documents), r.TypesJoined())
	}
	return t
}

func gantt(title string, rows []analysis.CalendarRow) Chart {
	c := Chart{Kind: ChartGantt, Title: title}
	for _, r := range rows {
		c.Labels = append(c.Labels, r.Group)
		c.Spans = append(c.Spans, Span{
			Label: r.Group,
			Start: r.Start,
			End:   r.DisplayEnd,
			Info:  fmt.Sprintf("%d jours, %d documents", r.DurationDays, r.Documents),
		})
	}
	return c
}

func buildSequence(_ context.Context, in Input) (*Report, error) {
	period := in.Query.periodOr(analysis.Period6M)
	ds := analysis.FilterPeriod(in.Dataset, period)
	if in.Query.Lot != "" {
		ds = ds.Filter(ged.In(ged.FieldLot, in.Query.Lot))
	}
	if ds.Len() == 0 {
		return nil, errors.New(errors.CodeEmptyDataset, "no record in the selected period", nil).
			WithContext("period", string(period)).
			WithRecoverable(true)
	}
	rows := analysis.Preprocess(ds)

	means := Table{Title: "Date moyenne de dépôt par type", Headers: []string{"TYPE DE DOCUMENT", "Date moyenne de dépôt GED"}}
	for _, m := range analysis.MeanDepositDates(ds) {
		means.AddRow(m.DocumentType, formatDate(m.Date))
	}

	ids, err := analysis.Cluster(rows, in.Settings.Clusters)
	if err != nil {
		return nil, err
	}
	flags, err := analysis.Anomalies(rows, in.Settings.Contamination)
	if err != nil {
		return nil, err
	}

	scatter := Chart{Kind: ChartScatter, Title: "Séquence des dépôts", XLabel: "Date dépôt GED", YLabel: "Groupe"}
	clusterSeries := Series{Name: "Groupe"}
	anomalies := Table{
		Title:   "Dépôts atypiques",
		Headers: []string{"Date dépôt GED", "TYPE DE DOCUMENT", "LOT", "Libellé du document", "INDICE"},
	}
	type span struct {
		first, last time.Time
		n           int
	}
	clusters := make(map[int]*span)
	for i, r := range rows {
		if ids[i] < 0 {
			continue
		}
		date := formatDate(r.DepositDate)
		scatter.Labels = append(scatter.Labels, date)
		clusterSeries.Values = append(clusterSeries.Values, float64(ids[i]))
		if flags[i] {
			clusterSeries.Colors = append(clusterSeries.Colors, "red")
			anomalies.AddRow(date, r.DocumentType, r.Lot, r.Label, r.Index)
		} else {
			clusterSeries.Colors = append(clusterSeries.Colors, "steelblue")
		}
		c, ok := clusters[ids[i]]
		if !ok {
			c = &span{first: r.DepositDate, last: r.DepositDate}
			clusters[ids[i]] = c
		}
		c.n++
		if r.DepositDate.Before(c.first) {
			c.first = r.DepositDate
		}
		if r.DepositDate.After(c.last) {
			c.last = r.DepositDate
		}
	}
	scatter.Series = []Series{clusterSeries}

	clusterTable := Table{Title: "Groupes de dépôts", Headers: []string{"Groupe", "Premier dépôt", "Dernier dépôt", "Nombre de documents"}}
	for id := 0; id < in.Settings.Clusters; id++ {
		if c, ok := clusters[id]; ok {
			clusterTable.AddRow(strconv.Itoa(id+1), formatDate(c.first), formatDate(c.last), strconv.Itoa(c.n))
		}
	}

	summary := Table{
		Title:   "Synthèse par type de document",
		Headers: []string{"TYPE DE DOCUMENT", "Nombre de documents", "Premier dépôt", "Dernier dépôt", "Durée moyenne entre versions (jours)"},
	}
	for _, s := range analysis.Summary(rows) {
		gap := ""
		if s.Gaps > 0 {
			gap = formatFloat(s.MeanGapDays)
		}
		summary.AddRow(s.DocumentType, strconv.Itoa(s.Documents), formatDate(s.First), formatDate(s.Last), gap)
	}

	rep := &Report{
		Tables: []Table{means, clusterTable, anomalies, summary},
		Charts: []Chart{scatter, countChart("Distribution par type de document", ChartBar, analysis.CountBy(ds, ged.FieldDocumentType))},
	}
	corr := analysis.Correlation(rows)
	if math.IsNaN(corr) {
		rep.addMeta("correlation", nil)
	} else {
		rep.addMeta("correlation", analysis.Round(corr, 3))
	}
	rep.addMeta("period", string(period))
	rep.addMeta("records", ds.Len())
	rep.addMeta("anomalies", len(anomalies.Rows))
	rep.addMeta("lots", in.Dataset.Values(ged.FieldLot))
	return rep, nil
}

func headers(fields []ged.Field, sep string) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Header()
	}
	return strings.Join(names, sep)
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
