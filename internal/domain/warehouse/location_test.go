package warehouse

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/inventory/internal/domain/shared"
)

func TestLocationCode(t *testing.T) {
	assert.Equal(t, "A-R1-C3", LocationCode(ZoneCodeA, "r1", 3))
	assert.Equal(t, "F-X-C12", LocationCode(ZoneCodeF, "X", 12))
}

func TestNewStorageLocation(t *testing.T) {
	whID, zoneID := uuid.New(), uuid.New()

	t.Run("derives code from zone code, row and column", func(t *testing.T) {
		l, err := NewStorageLocation(whID, zoneID, ZoneCodeB, "r2", 7)
		require.NoError(t, err)
		assert.Equal(t, "B-R2-C7", l.Code)
		assert.Equal(t, "R2", l.RowLabel)
		assert.Equal(t, 7, l.ColumnNumber)
		assert.True(t, l.IsActive())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewStorageLocation(uuid.Nil, zoneID, ZoneCodeB, "R2", 7)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)

		_, err = NewStorageLocation(whID, zoneID, ZoneCode("Z"), "R2", 7)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)

		_, err = NewStorageLocation(whID, zoneID, ZoneCodeB, " ", 7)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)

		_, err = NewStorageLocation(whID, zoneID, ZoneCodeB, "R2", 0)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
	})
}
