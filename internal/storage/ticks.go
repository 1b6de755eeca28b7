package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// TickRow is one recorded tick.
type TickRow struct {
	Tick        uint64  `json:"tick"`
	T           float64 `json:"t"`
	SetLinear   float64 `json:"setpoint_linear"`
	SetAngular  float64 `json:"setpoint_angular"`
	MeasLinear  float64 `json:"measured_linear"`
	MeasAngular float64 `json:"measured_angular"`
	ErrLinear   float64 `json:"error_linear"`
	ErrAngular  float64 `json:"error_angular"`
	CorrLinear  float64 `json:"correction_linear"`
	CorrAngular float64 `json:"correction_angular"`
	Left        float64 `json:"left"`
	Right       float64 `json:"right"`
	MotorGain   float64 `json:"motor_gain"`
	Saturated   bool    `json:"saturated"`
	PublishErr  string  `json:"publish_err,omitempty"`
}

// LoadTicks reads a session's ticks. Rows that fail to parse are skipped.
func (s *Store) LoadTicks(id string) ([]TickRow, error) {
	f, err := os.Open(s.path(id, ticksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TickRow{}, nil
	}

	rows := make([]TickRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row, err := parseTick(rec)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseTick(rec []string) (TickRow, error) {
	if len(rec) < len(tickHeader)-1 {
		return TickRow{}, fmt.Errorf("short row: %d fields", len(rec))
	}
	var row TickRow
	var err error
	if row.Tick, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return row, err
	}
	dst := []*float64{
		&row.T,
		&row.SetLinear, &row.SetAngular,
		&row.MeasLinear, &row.MeasAngular,
		&row.ErrLinear, &row.ErrAngular,
		&row.CorrLinear, &row.CorrAngular,
		&row.Left, &row.Right, &row.MotorGain,
	}
	for i, p := range dst {
		if *p, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return row, err
		}
	}
	if row.Saturated, err = strconv.ParseBool(rec[13]); err != nil {
		return row, err
	}
	if len(rec) > 14 {
		row.PublishErr = rec[14]
	}
	return row, nil
}

// ErrorSeries splits rows into time, linear error and angular error columns.
func ErrorSeries(rows []TickRow) (t, linear, angular []float64) {
	t = make([]float64, len(rows))
	linear = make([]float64, len(rows))
	angular = make([]float64, len(rows))
	for i, r := range rows {
		t[i], linear[i], angular[i] = r.T, r.ErrLinear, r.ErrAngular
	}
	return t, linear, angular
}

// ExportCSV copies a session's tick table to w.
func (s *Store) ExportCSV(id string, w io.Writer) error {
	f, err := os.Open(s.path(id, ticksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
