package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/magnetlab/signal-pipeline/app/dto"
)

func TestLeadsWorkbook(t *testing.T) {
	now := time.Now().UTC()
	leads := []dto.LeadDTO{
		{
			FullName:    "Jane Doe",
			JobTitle:    "VP of Sales",
			Company:     "Acme",
			ProfileURL:  "https://linkedin.com/in/janedoe",
			ICPScore:    100,
			ICPMatched:  true,
			FirstSeenAt: now,
			LastSeenAt:  now,
		},
		{
			FullName:    "John Smith",
			JobTitle:    "Engineer",
			ProfileURL:  "https://linkedin.com/in/johnsmith",
			ICPScore:    50,
			FirstSeenAt: now,
			LastSeenAt:  now,
		},
	}

	buf, err := NewExportService().LeadsWorkbook(leads)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Full Name", rows[0][0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, "VP of Sales", rows[1][1])
	assert.Equal(t, "John Smith", rows[2][0])
}

func TestLeadsWorkbookEmpty(t *testing.T) {
	buf, err := NewExportService().LeadsWorkbook(nil)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
