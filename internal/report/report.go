// Package report renders the operator dashboard as an xlsx workbook.
package report

import (
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/dashboard"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/grid"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/insights"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/series"
)

// Sheet names, in workbook order.
const (
	SheetSummary     = "Summary"
	SheetRegions     = "Regions"
	SheetNodes       = "Nodes"
	SheetInsights    = "Insights"
	SheetConsumption = "Consumption"
	SheetProduction  = "Production"
)

// Input is everything the report shows.
type Input struct {
	GeneratedAt time.Time
	Dashboard   dashboard.Operator
	Insights    []insights.Insight
}

// Build creates the workbook.
func Build(in Input) (*xlsx.File, error) {
	f := xlsx.NewFile()

	steps := []struct {
		name string
		fill func(*xlsx.Sheet)
	}{
		{SheetSummary, func(s *xlsx.Sheet) { summary(s, in) }},
		{SheetRegions, func(s *xlsx.Sheet) { regions(s, grid.Regions()) }},
		{SheetNodes, func(s *xlsx.Sheet) { nodes(s, in.Dashboard.Nodes) }},
		{SheetInsights, func(s *xlsx.Sheet) { insightRows(s, in.Insights) }},
		{SheetConsumption, func(s *xlsx.Sheet) { chart(s, "kWh", in.Dashboard.Consumption) }},
		{SheetProduction, func(s *xlsx.Sheet) { chart(s, "kWh", in.Dashboard.Production) }},
	}
	for _, st := range steps {
		sheet, err := f.AddSheet(st.name)
		if err != nil {
			return nil, eris.Wrapf(err, "report: add sheet %s", st.name)
		}
		st.fill(sheet)
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, in Input) error {
	f, err := Build(in)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "report: write workbook")
}

func header(s *xlsx.Sheet, cols ...string) {
	row := s.AddRow()
	for _, c := range cols {
		cell := row.AddCell()
		cell.SetString(c)
		st := xlsx.NewStyle()
		st.Font.Bold = true
		cell.SetStyle(st)
	}
}

func pair(s *xlsx.Sheet, k string, v any) {
	row := s.AddRow()
	row.AddCell().SetString(k)
	cell := row.AddCell()
	switch x := v.(type) {
	case string:
		cell.SetString(x)
	case int:
		cell.SetInt(x)
	case float64:
		cell.SetFloat(x)
	default:
		cell.SetValue(x)
	}
}

func summary(s *xlsx.Sheet, in Input) {
	d := in.Dashboard
	header(s, "Field", "Value")
	pair(s, "Generated", in.GeneratedAt.UTC().Format(time.RFC3339))
	pair(s, "Region", d.Region.Name)
	pair(s, "Day forecast", formatQty(d.Region.Forecasts.Day))
	pair(s, "Week forecast", formatQty(d.Region.Forecasts.Week))
	pair(s, "Month forecast", formatQty(d.Region.Forecasts.Month))
	pair(s, "Efficiency %", d.Region.Efficiency)
	pair(s, "Prosumers", d.Region.Trends.Users)
	pair(s, "Avg consumption kWh", d.Region.Trends.AvgConsumption)
	pair(s, "Predicted MWh", d.Card.PredictedMWh)
	pair(s, "Status", d.Card.Status)
	if d.Card.Live {
		pair(s, "Actual MWh", d.Card.ActualMWh)
		pair(s, "Error %", *d.Card.ErrorPercent)
		pair(s, "Model", d.Card.ModelVersion)
	}
	pair(s, "Last update", d.Card.LastUpdate)
	pair(s, "Nodes", d.NodeCount)
}

func formatQty(q grid.Quantity) string {
	return strconv.FormatFloat(q.Value, 'f', -1, 64) + " " + q.Unit
}

func regions(s *xlsx.Sheet, rs []grid.Region) {
	header(s, "Key", "Name", "Lat", "Lng", "Day", "Week", "Month", "Users", "Avg kWh", "Efficiency %")
	for _, r := range rs {
		row := s.AddRow()
		row.AddCell().SetString(r.Key)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetFloat(r.Center.Lat)
		row.AddCell().SetFloat(r.Center.Lng)
		row.AddCell().SetString(formatQty(r.Forecasts.Day))
		row.AddCell().SetString(formatQty(r.Forecasts.Week))
		row.AddCell().SetString(formatQty(r.Forecasts.Month))
		row.AddCell().SetInt(r.Trends.Users)
		row.AddCell().SetFloat(r.Trends.AvgConsumption)
		row.AddCell().SetInt(r.Efficiency)
	}
}

func nodes(s *xlsx.Sheet, p *dashboard.NodePanel) {
	header(s, "Node", "Name", "Weight %", "Accuracy %", "Prediction MWh")
	if p == nil {
		return
	}
	for _, n := range p.Nodes {
		row := s.AddRow()
		row.AddCell().SetString(n.ID)
		row.AddCell().SetString(n.Name)
		row.AddCell().SetInt(n.WeightPct)
		row.AddCell().SetFloat(n.Accuracy)
		row.AddCell().SetString(n.PredictionMWh)
	}
	pair(s, "Aggregation", p.Aggregation)
	pair(s, "Federated accuracy", p.FederatedAccuracy)
}

func insightRows(s *xlsx.Sheet, in []insights.Insight) {
	header(s, "Type", "Title", "Message", "Action")
	for _, i := range in {
		row := s.AddRow()
		row.AddCell().SetString(string(i.Type))
		row.AddCell().SetString(i.Title)
		row.AddCell().SetString(i.Message)
		row.AddCell().SetString(i.Action)
	}
}

func chart(s *xlsx.Sheet, unit string, ser series.Series) {
	header(s, "Label", unit)
	for i, v := range ser.Values {
		row := s.AddRow()
		label := ""
		if i < len(ser.Labels) {
			label = ser.Labels[i]
		}
		row.AddCell().SetString(label)
		row.AddCell().SetFloat(v)
	}
}
