package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskapproval/internal/models"
)

const expectedHeader = "ID,Title,Description,Status,Priority,Assigned To,Created By,Created Date,Scheduled Date,Approved By,Approval Date"

func pendingView(title string) models.TaskView {
	return models.TaskView{
		ID:               uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Title:            title,
		Description:      "line one, with comma",
		Status:           models.StatusPending,
		Priority:         models.PriorityHigh,
		AssignedUserID:   uuid.New(),
		AssignedUserName: "Manager User",
		CreatedBy:        uuid.New(),
		CreatedByName:    "Regular User",
		CreatedDate:      time.Date(2025, 2, 3, 14, 5, 59, 0, time.UTC),
		ScheduledDate:    time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC),
	}
}

func render(r *CSVRenderer, views []models.TaskView) ([]byte, error) {
	var buf bytes.Buffer
	err := r.Render(&buf, views)
	return buf.Bytes(), err
}

func lines(t *testing.T, out []byte) []string {
	t.Helper()
	require.True(t, bytes.HasSuffix(out, []byte("\n")))
	return strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
}

func TestRender_LineCount(t *testing.T) {
	r := NewCSVRenderer()

	for _, n := range []int{0, 1, 5} {
		views := make([]models.TaskView, n)
		for i := range views {
			views[i] = pendingView("task")
		}

		out, err := render(r, views)
		require.NoError(t, err)

		got := lines(t, out)
		assert.Len(t, got, n+1)
		assert.Equal(t, expectedHeader, got[0])
	}
}

func TestRender_PendingRow(t *testing.T) {
	out, err := render(NewCSVRenderer(), []models.TaskView{pendingView("Audit")})
	require.NoError(t, err)

	assert.Equal(t,
		`11111111-2222-3333-4444-555555555555,"Audit","line one, with comma",PENDING,HIGH,"Manager User","Regular User",2025-02-03 14:05,2025-02-10 09:00,"",`,
		lines(t, out)[1],
	)
}

func TestRender_DecidedRow(t *testing.T) {
	approver := uuid.New()
	decided := time.Date(2025, 2, 4, 8, 30, 0, 0, time.UTC)

	v := pendingView("Budget")
	v.Status = models.StatusApproved
	v.ApprovedBy = &approver
	v.ApprovedByName = "Admin User"
	v.ApprovalDate = &decided

	out, err := render(NewCSVRenderer(), []models.TaskView{v})
	require.NoError(t, err)

	row := lines(t, out)[1]
	assert.True(t, strings.HasSuffix(row, `,"Admin User",2025-02-04 08:30`), row)
	assert.Contains(t, row, ",APPROVED,")
}

func TestRender_Escaping(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{`Say "Hi"`, `"Say ""Hi"""`},
		{`plain`, `"plain"`},
		{`""`, `""""""`},
		{``, `""`},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			out, err := render(NewCSVRenderer(), []models.TaskView{pendingView(tt.title)})
			require.NoError(t, err)

			row := lines(t, out)[1]
			assert.True(t, strings.HasPrefix(row, "11111111-2222-3333-4444-555555555555,"+tt.want+","), row)
		})
	}
}

func TestRender_MissingNamesRenderEmptyQuoted(t *testing.T) {
	v := pendingView("orphan")
	v.AssignedUserName = ""
	v.CreatedByName = ""

	out, err := render(NewCSVRenderer(), []models.TaskView{v})
	require.NoError(t, err)
	assert.Contains(t, lines(t, out)[1], `,PENDING,HIGH,"","",`)
}

func TestRender_Location(t *testing.T) {
	r := &CSVRenderer{Location: time.FixedZone("UTC+3", 3*60*60)}

	out, err := render(r, []models.TaskView{pendingView("zoned")})
	require.NoError(t, err)
	assert.Contains(t, lines(t, out)[1], ",2025-02-03 17:05,2025-02-10 12:00,")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriterError(t *testing.T) {
	views := []models.TaskView{pendingView("x")}
	err := NewCSVRenderer().Render(failingWriter{}, views)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
