package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, "0001_init.sql", all[0].Name)
	assert.Contains(t, all[0].SQL, "UNIQUE (employee_id, day_key)")
}
