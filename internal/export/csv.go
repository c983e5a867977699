// Package export renders enriched tasks as delimited text.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gurkanbulca/taskapproval/internal/models"
)

// DateLayout is the format of every date column
const DateLayout = "2006-01-02 15:04"

var header = []string{
	"ID", "Title", "Description", "Status", "Priority", "Assigned To", "Created By",
	"Created Date", "Scheduled Date", "Approved By", "Approval Date",
}

// CSVRenderer writes one header line followed by one line per task. Free-text columns
// are always quoted, so an absent approver renders as "". Identifiers, enums and dates
// are never quoted and an absent approval date renders as nothing.
type CSVRenderer struct {
	// Location dates are rendered in; UTC when nil
	Location *time.Location
}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{Location: time.UTC}
}

func (r *CSVRenderer) Render(w io.Writer, views []models.TaskView) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(header, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range views {
		if _, err := bw.WriteString(r.row(&views[i]) + "\n"); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func (r *CSVRenderer) row(v *models.TaskView) string {
	approvalDate := ""
	if v.ApprovalDate != nil {
		approvalDate = r.date(*v.ApprovalDate)
	}

	return strings.Join([]string{
		v.ID.String(),
		quote(v.Title),
		quote(v.Description),
		string(v.Status),
		string(v.Priority),
		quote(v.AssignedUserName),
		quote(v.CreatedByName),
		r.date(v.CreatedDate),
		r.date(v.ScheduledDate),
		quote(v.ApprovedByName),
		approvalDate,
	}, ",")
}

func (r *CSVRenderer) date(t time.Time) string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// quote wraps s in double quotes, doubling any embedded ones
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
