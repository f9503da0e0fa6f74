package commit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/unionhall/leavehub/modules/importer/matching"
	"github.com/unionhall/leavehub/modules/importer/preview"
	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
	"github.com/unionhall/leavehub/modules/roster/domain/aggregates/member"
)

// PrepareImportData turns the admin's selection into insertable rows, one
// per selected index, in selection order. Leave type and request date pass
// through from the parsed candidate untouched. Items resolved during the
// unmatched stage take their member from assignments, keyed by item ID.
func PrepareImportData(items []preview.Item, selectedIndices []int, assignments map[uuid.UUID]*member.Member, importedBy string) ([]*request.LeaveRequest, error) {
	rows := make([]*request.LeaveRequest, 0, len(selectedIndices))

	for _, idx := range selectedIndices {
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("selected index %d out of range (%d items)", idx, len(items))
		}
		item := items[idx]

		var resolved *member.Member
		switch {
		case item.Match.Status == matching.StatusMatched:
			resolved = item.Match.Member
		default:
			resolved = assignments[item.ID]
		}
		if resolved == nil {
			return nil, fmt.Errorf("item %d (%s %s) has no resolved member",
				idx, item.Candidate.FirstName, item.Candidate.LastName)
		}

		rows = append(rows, request.New(
			resolved.PINNumber(),
			item.CalendarID,
			item.Candidate.RequestDate,
			item.Candidate.LeaveType,
			request.WithMemberID(resolved.ID()),
			request.WithStatus(item.Status),
			request.WithOriginalRequestDate(item.Candidate.OriginalRequestDate),
			request.WithImportedBy(importedBy),
		))
	}
	return rows, nil
}
