package interfaces

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilafalo/tableside/internal/domain"
)

func TestTablePatchOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	status := domain.TableUnpaid
	data, err := json.Marshal(TablePatch{Status: &status})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"unpaid"}`, string(data))
}

func TestTablePatchClearSendsExplicitNull(t *testing.T) {
	t.Parallel()

	status := domain.TableFree
	data, err := json.Marshal(TablePatch{Status: &status, ClearCurrentOrder: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"free","currentOrder":null}`, string(data))
}

func TestTablePatchCurrentOrderWinsOverClear(t *testing.T) {
	t.Parallel()

	order := "o1"
	data, err := json.Marshal(TablePatch{CurrentOrder: &order, ClearCurrentOrder: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentOrder":"o1"}`, string(data))
}
