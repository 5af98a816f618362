package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileRef_AcceptsPDF(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 30, 0, 0, time.UTC)
	ref, err := NewFileRef("blsd.pdf", "application/pdf", 2048, 0, now)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(ref.Key)
	assert.NoError(t, parseErr)
	assert.Equal(t, "blsd.pdf", ref.Name)
	assert.Equal(t, int64(2048), ref.Size)
	assert.Equal(t, "2024-07-15T09:30:00Z", ref.UploadedAt)
}

func TestNewFileRef_Rejects(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name        string
		file        string
		contentType string
		size        int64
		max         int64
	}{
		{"not pdf", "scan.png", "image/png", 100, 0},
		{"empty", "a.pdf", "application/pdf", 0, 0},
		{"too large", "a.pdf", "application/pdf", DefaultMaxAttachmentBytes + 1, 0},
		{"custom limit", "a.pdf", "application/pdf", 2048, 1024},
		{"no name", " ", "application/pdf", 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFileRef(tc.file, tc.contentType, tc.size, tc.max, now)
			assert.ErrorIs(t, err, ErrInvalidAttachment)
		})
	}
}

func TestDate_Time(t *testing.T) {
	d, err := Date("2024-01-15").Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = Date("2024-07-15T10:00:00Z").Time()
	assert.NoError(t, err)

	_, err = Date("15/01/2024").Time()
	assert.Error(t, err)

	assert.True(t, Date("  ").IsZero())
	assert.Equal(t, Date("2024-03-01"), DateOf(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)))
}

func TestOperator_HasRole(t *testing.T) {
	op := Operator{Role: "Infermiere domiciliare", Status: OperatorStatusActive}
	assert.True(t, op.HasRole(RoleNurse))
	assert.True(t, op.HasRole("infermier"))
	assert.False(t, op.HasRole(RolePhysician))
	assert.True(t, op.IsActive())
}
