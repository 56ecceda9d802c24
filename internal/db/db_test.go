package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-data/gait.report/internal/marker"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.MigrateUp())
	return database
}

func TestMigrateUpIdempotent(t *testing.T) {
	database := newTestDB(t)

	// Second run is a no-op, not an error.
	require.NoError(t, database.MigrateUp())

	version, dirty, err := database.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestMigrateVersionFreshDB(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer database.Close()

	version, dirty, err := database.MigrateVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestMarkerPresetRoundTrip(t *testing.T) {
	database := newTestDB(t)
	configs := marker.DefaultConfigs()

	require.NoError(t, database.SaveMarkerPreset("lab-setup", configs))

	got, err := database.GetMarkerPreset("lab-setup")
	require.NoError(t, err)
	assert.Equal(t, configs, got)

	names, err := database.ListMarkerPresets()
	require.NoError(t, err)
	assert.Equal(t, []string{"lab-setup"}, names)
}

func TestMarkerPresetUpsert(t *testing.T) {
	database := newTestDB(t)

	require.NoError(t, database.SaveMarkerPreset("p", marker.DefaultConfigs()))

	replacement := []marker.Config{
		{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1},
	}
	require.NoError(t, database.SaveMarkerPreset("p", replacement))

	got, err := database.GetMarkerPreset("p")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)

	names, err := database.ListMarkerPresets()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestMarkerPresetValidation(t *testing.T) {
	database := newTestDB(t)

	assert.Error(t, database.SaveMarkerPreset("", marker.DefaultConfigs()))

	err := database.SaveMarkerPreset("bad", []marker.Config{
		{JointName: "left_elbow", ColorName: "Green", PositionOrder: 1},
		{JointName: "right_elbow", ColorName: "Green", PositionOrder: 1},
	})
	assert.Error(t, err, "invalid configs are rejected before hitting the database")
}

func TestGetMarkerPresetAbsent(t *testing.T) {
	database := newTestDB(t)

	_, err := database.GetMarkerPreset("nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteMarkerPreset(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.SaveMarkerPreset("p", marker.DefaultConfigs()))

	require.NoError(t, database.DeleteMarkerPreset("p"))
	_, err := database.GetMarkerPreset("p")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, database.DeleteMarkerPreset("p"), "deleting an absent preset is fine")
}

func TestCalibrationLabelsRoundTrip(t *testing.T) {
	database := newTestDB(t)

	labels, err := database.LoadCalibrationLabels()
	require.NoError(t, err)
	assert.Empty(t, labels)

	want := map[string]string{"Red": "left_shoulder", "Blue": "right_shoulder"}
	require.NoError(t, database.SaveCalibrationLabels(want))

	labels, err = database.LoadCalibrationLabels()
	require.NoError(t, err)
	assert.Equal(t, want, labels)

	// Saving replaces wholesale.
	require.NoError(t, database.SaveCalibrationLabels(map[string]string{"Green": "left_elbow"}))
	labels, err = database.LoadCalibrationLabels()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Green": "left_elbow"}, labels)
}
