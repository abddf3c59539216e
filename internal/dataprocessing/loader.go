package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"

	apperrors "occratios/internal/errors"
	"occratios/internal/infrastructure"
	"occratios/pkg/contracts/domain"
)

// cancelCheckInterval is how many rows are read between context checks
const cancelCheckInterval = 4096

// RatioColumns are required by the ratio pipeline: identity, assets and
// every consolidation input.
var RatioColumns = []string{
	domain.ColBankID, domain.ColYear, domain.ColAssets,
	domain.ColDeposits, domain.ColUSDeposits, domain.ColUSDODeposits,
	domain.ColLoans, domain.ColODraft,
	domain.ColCapital, domain.ColSurplusFund, domain.ColUndividedProfits,
	domain.ColCurrency, domain.ColLegalTender, domain.ColChecksAndOther,
	domain.ColBillsSB, domain.ColBillsNB, domain.ColBondsHand, domain.ColBondsDep,
	domain.ColDueFromNB, domain.ColDueFromRA, domain.ColDueFromOtherNB,
	domain.ColDueFromOtherNBAndSB, domain.ColDueFromSB,
}

// RiskColumns are required by the risk cross-tab.
var RiskColumns = []string{
	domain.ColAssets,
	domain.ColCapital, domain.ColSurplusFund, domain.ColUndividedProfits,
	domain.ColBillsPayable, domain.ColRediscounts,
	domain.ColIsRec,
}

// naTokens read as missing without a parse warning.
var naTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true,
	"none": true, "#n/a": true, "<na>": true,
}

// LoadOptions controls how a table file is read.
type LoadOptions struct {
	// Delimiter for delimited text; zero means ','.
	Delimiter rune
	// Required lists columns that must be present in the header.
	Required []string
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string
}

// LoadReport summarises one load.
type LoadReport struct {
	Path           string
	Format         string
	Rows           int
	Columns        []string
	IgnoredColumns []string
	// ParseWarnings counts malformed cells per column.
	ParseWarnings map[string]int
}

// TotalWarnings sums ParseWarnings
func (r LoadReport) TotalWarnings() int {
	n := 0
	for _, c := range r.ParseWarnings {
		n += c
	}
	return n
}

// Loader reads OCC balance-sheet tables from CSV or XLSX files.
type Loader struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewLoader creates a loader. Both arguments may be nil.
func NewLoader(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger.With(slog.String("component", "loader")),
		metrics: metrics,
	}
}

// Load reads path into an immutable table. Malformed cells become missing;
// an unreadable file or absent required column is a LOAD error.
func (l *Loader) Load(ctx context.Context, path string, opts LoadOptions) (*domain.Table, error) {
	table, _, err := l.LoadWithReport(ctx, path, opts)
	return table, err
}

// LoadWithReport is Load plus the per-load report.
func (l *Loader) LoadWithReport(ctx context.Context, path string, opts LoadOptions) (*domain.Table, LoadReport, error) {
	report := LoadReport{Path: path, ParseWarnings: make(map[string]int)}

	src, closeFn, format, err := openRowSource(path, opts)
	if err != nil {
		return nil, report, apperrors.NewLoadError(path, err)
	}
	defer closeFn()
	report.Format = format

	header, err := src.Next()
	if errors.Is(err, io.EOF) {
		return nil, report, apperrors.NewLoadError(path, errors.New("file has no header row"))
	}
	if err != nil {
		return nil, report, apperrors.NewLoadError(path, err)
	}

	mapping, ignored := mapHeader(header)
	report.IgnoredColumns = ignored
	for _, c := range domain.Columns {
		if _, ok := mapping[c.Name]; ok {
			report.Columns = append(report.Columns, c.Name)
		}
	}

	var missing []string
	for _, name := range opts.Required {
		if _, ok := mapping[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, report, apperrors.NewMissingColumnsError(path, missing)
	}

	if len(ignored) > 0 {
		l.logger.DebugContext(ctx, "Ignoring unknown columns",
			slog.String("path", path),
			slog.Any("columns", ignored))
	}

	warn := &rate.Sometimes{First: 5, Interval: 10 * time.Second}
	records := make([]domain.BalanceSheetRecord, 0, 1024)
	line := 1

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, report, apperrors.NewLoadError(path,
				apperrors.NewParsingError(fmt.Sprintf("malformed row at line %d", line), err).
					WithContext("line", line))
		}
		if isBlankRow(row) {
			continue
		}

		rec := parseRecord(row, mapping, func(col, raw string) {
			report.ParseWarnings[col]++
			warn.Do(func() {
				l.logger.WarnContext(ctx, "Malformed value read as missing",
					slog.String("path", path),
					slog.Int("line", line),
					slog.String("column", col),
					slog.String("value", raw))
			})
		})
		records = append(records, rec)

		if len(records)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
		}
	}

	report.Rows = len(records)

	l.metrics.RecordRowsLoaded(ctx, report.Rows)
	for col, n := range report.ParseWarnings {
		l.metrics.RecordParseWarnings(ctx, col, n)
	}

	l.logger.InfoContext(ctx, "Loaded balance sheets",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("rows", report.Rows),
		slog.Int("columns", len(report.Columns)),
		slog.Int("parse_warnings", report.TotalWarnings()))

	return domain.NewTable(path, records), report, nil
}

// rowSource yields raw rows; io.EOF marks the end.
type rowSource interface {
	Next() ([]string, error)
}

func openRowSource(path string, opts LoadOptions) (rowSource, func(), string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openXLSX(path, opts.Sheet)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, func() {}, "", err
		}
		r := csv.NewReader(bufio.NewReader(f))
		r.Comma = ','
		if opts.Delimiter != 0 {
			r.Comma = opts.Delimiter
		}
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		return &csvSource{r: r}, func() { f.Close() }, "csv", nil
	}
}

type csvSource struct {
	r *csv.Reader
}

func (s *csvSource) Next() ([]string, error) {
	return s.r.Read()
}

type xlsxSource struct {
	rows *excelize.Rows
}

func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.rows.Columns()
}

func openXLSX(path, sheet string) (rowSource, func(), string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, func() {}, "", err
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, func() {}, "", errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, func() {}, "", fmt.Errorf("sheet %q: %w", sheet, err)
	}

	closeFn := func() {
		rows.Close()
		f.Close()
	}
	return &xlsxSource{rows: rows}, closeFn, "xlsx", nil
}

// mapHeader returns catalogue column name → cell index, matching
// case-insensitively after trimming and BOM removal. The first occurrence of
// a duplicated header wins.
func mapHeader(header []string) (map[string]int, []string) {
	mapping := make(map[string]int, len(header))
	var ignored []string
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := domain.LookupColumn(name); !ok {
			if name != "" {
				ignored = append(ignored, name)
			}
			continue
		}
		if _, dup := mapping[name]; !dup {
			mapping[name] = i
		}
	}
	return mapping, ignored
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRecord applies the declared column types. Cells past the end of a
// ragged row read as missing.
func parseRecord(row []string, mapping map[string]int, onMalformed func(col, raw string)) domain.BalanceSheetRecord {
	var rec domain.BalanceSheetRecord
	for _, c := range domain.Columns {
		idx, ok := mapping[c.Name]
		if !ok || idx >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[idx])

		switch c.Kind {
		case domain.KindString:
			rec.BankID = raw
		case domain.KindInteger:
			v, ok, malformed := parseYear(raw)
			if malformed {
				onMalformed(c.Name, raw)
			}
			if ok {
				rec.Year = domain.Int(v)
			}
		case domain.KindFloat:
			parse := parseFloat
			if c.Name == domain.ColIsRec {
				parse = parseFlag
			}
			v, malformed := parse(raw)
			if malformed {
				onMalformed(c.Name, raw)
			}
			*c.Field(&rec) = v
		}
	}
	return rec
}

func parseFloat(raw string) (domain.NullFloat, bool) {
	if naTokens[strings.ToLower(raw)] {
		return domain.NullFloat{}, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.NullFloat{}, true
	}
	return domain.Float(v), false
}

// parseFlag reads a 0/1 indicator; true and false are accepted as 1 and 0.
func parseFlag(raw string) (domain.NullFloat, bool) {
	switch strings.ToLower(raw) {
	case "true":
		return domain.Float(1), false
	case "false":
		return domain.Float(0), false
	}
	return parseFloat(raw)
}

// parseYear accepts "1901" and integral floats such as "1901.0". Years
// outside the int32 range are malformed.
func parseYear(raw string) (int, bool, bool) {
	if naTokens[strings.ToLower(raw)] {
		return 0, false, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false, true
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false, true
	}
	return int(f), true, false
}
