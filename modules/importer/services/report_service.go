package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/unionhall/leavehub/modules/importer/commit"
	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
)

// ReportService renders import outcomes as an Excel workbook the office
// staff can file with the paper records.
type ReportService struct {
	log *logrus.Logger
}

func NewReportService(log *logrus.Logger) *ReportService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReportService{log: log}
}

// BuildCommitReport produces a workbook with one sheet per concern:
// committed rows, failed rows, and preview items that never made it to
// commit.
func (s *ReportService) BuildCommitReport(items []preview.Item, selectedIndices []int, result *commit.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.WithError(err).Warn("report: closing workbook")
		}
	}()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	summaryRows := [][]interface{}{
		{"Generated", time.Now().Format(time.RFC3339)},
		{"Selected", len(selectedIndices)},
		{"Inserted", result.InsertedCount},
		{"Failed", result.FailedCount},
		{"Success", result.Success},
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return nil, err
	}

	failedByIndex := make(map[int]string, len(result.FailedItems))
	for _, fi := range result.FailedItems {
		failedByIndex[fi.Index] = fi.Error
	}

	committed := [][]interface{}{{"First Name", "Last Name", "Date", "Type", "Status"}}
	failed := [][]interface{}{{"Row", "First Name", "Last Name", "Date", "Type", "Error"}}
	for rowNo, idx := range selectedIndices {
		if idx < 0 || idx >= len(items) {
			continue
		}
		it := items[idx]
		c := it.Candidate
		if msg, bad := failedByIndex[rowNo]; bad {
			failed = append(failed, []interface{}{
				rowNo, c.FirstName, c.LastName, c.RequestDate.Format("2006-01-02"), string(c.LeaveType), msg,
			})
			continue
		}
		committed = append(committed, []interface{}{
			c.FirstName, c.LastName, c.RequestDate.Format("2006-01-02"), string(c.LeaveType), string(it.Status),
		})
	}

	if _, err := f.NewSheet("Committed"); err != nil {
		return nil, err
	}
	if err := writeRows(f, "Committed", committed); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Failures"); err != nil {
		return nil, err
	}
	if err := writeRows(f, "Failures", failed); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildUnmatchedReport lists preview items needing manual review, with the
// matcher's candidate suggestions where it had any.
func (s *ReportService) BuildUnmatchedReport(items []preview.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.WithError(err).Warn("report: closing workbook")
		}
	}()

	const sheet = "Unmatched"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	rows := [][]interface{}{{"First Name", "Last Name", "Date", "Type", "Match Status", "Candidates"}}
	for _, it := range items {
		if it.Match.Status == matching.StatusMatched {
			continue
		}
		candidates := ""
		for i, m := range it.Match.PossibleMatches {
			if i > 0 {
				candidates += "; "
			}
			candidates += fmt.Sprintf("%s (PIN %d)", m.FullName(), m.PINNumber())
		}
		rows = append(rows, []interface{}{
			it.Candidate.FirstName,
			it.Candidate.LastName,
			it.Candidate.RequestDate.Format("2006-01-02"),
			string(it.Candidate.LeaveType),
			string(it.Match.Status),
			candidates,
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPositionAudit renders the waitlist consistency check for one date.
func (s *ReportService) BuildPositionAudit(ctx context.Context, importSvc *ImportService, calendarID uuid.UUID, requestDate time.Time) ([]byte, error) {
	issues, err := importSvc.AuditPositions(ctx, calendarID, requestDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.WithError(err).Warn("report: closing workbook")
		}
	}()

	const sheet = "Waitlist Audit"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	rows := [][]interface{}{{"Position", "Issue", "Request IDs"}}
	for _, issue := range issues {
		ids := ""
		for i, id := range issue.RequestIDs {
			if i > 0 {
				ids += ", "
			}
			ids += id.String()
		}
		rows = append(rows, []interface{}{issue.Position, issue.Kind, ids})
	}
	if len(issues) == 0 {
		rows = append(rows, []interface{}{"-", "no issues found", ""})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
