package database_test

import (
	"testing"

	"event_ticketing/database"
	"event_ticketing/model"
	"event_ticketing/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	database.Seed(db, zap.NewNop())
	database.Seed(db, zap.NewNop())

	var count int64
	require.NoError(t, db.Model(&model.Location{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
