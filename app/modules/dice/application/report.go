package diceservice

import (
	"bytes"
	"context"
	"fmt"

	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

const (
	ledgerSheet   = "Ledger"
	dieTypesSheet = "Die Types"
)

// ExportLedger renders the whole ledger as an XLSX workbook: one row per
// participant, one column per die type, and a sheet describing the types.
func (s *DiceService) ExportLedger(ctx context.Context) ([]byte, error) {
	participants, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	types, err := s.registry.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read die types: %w", err)
	}
	ledger, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ledgerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Participant", "Name"}
	for _, d := range types {
		header = append(header, d.Name)
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range participants {
		row := []any{string(p.ID), p.Name}
		for _, d := range types {
			row = append(row, ledger[p.ID][d.ID])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write participant %s: %w", p.ID, err)
		}
	}

	if _, err := f.NewSheet(dieTypesSheet); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}
	typeHeader := []any{"ID", "Name", "Enabled", "Max Per User", "Allow Gift", "Sort Priority"}
	if err := f.SetSheetRow(dieTypesSheet, "A1", &typeHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, d := range types {
		row := []any{d.ID, d.Name, d.Enabled, d.MaxPerUser, d.AllowGift, d.SortPriority}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(dieTypesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write die type %s: %w", d.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// HoldingsChart renders a PNG bar chart of how many dice of one type every
// participant holds.
func (s *DiceService) HoldingsChart(ctx context.Context, dieTypeID string) ([]byte, error) {
	d, err := s.registry.Get(ctx, dieTypeID)
	if err != nil {
		return nil, err
	}
	participants, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	ledger, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	bars, top := holdingBars(participants, ledger, d.ID)

	graph := chart.BarChart{
		Title:    d.Name,
		Width:    800,
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// holdingBars returns one bar per participant and the top of the value
// axis, which is never zero.
func holdingBars(participants []participantdomain.Participant, ledger map[participantdomain.ID]map[string]int, dieTypeID string) ([]chart.Value, float64) {
	top := 1.0
	bars := make([]chart.Value, 0, len(participants))
	for _, p := range participants {
		v := float64(ledger[p.ID][dieTypeID])
		if v > top {
			top = v
		}
		bars = append(bars, chart.Value{Label: p.Name, Value: v})
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "-", Value: 0})
	}
	return bars, top
}
